package ops

import (
	"database/sql"
	"testing"

	"github.com/hpungsan/howto/internal/db"
)

const sampleSummary = `Tying a tie takes practice.

Tools needed: tie, mirror
Time: 5 minutes
Difficulty: Easy

Step 1: Drape the tie around your neck. Step 2: Cross the wide end over.`

func openTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database, tmpDir
}

// fixedClock pins nowMillis for the duration of a test.
func fixedClock(t *testing.T, ms ...int64) {
	t.Helper()
	orig := nowMillis
	i := 0
	nowMillis = func() int64 {
		v := ms[min(i, len(ms)-1)]
		i++
		return v
	}
	t.Cleanup(func() { nowMillis = orig })
}
