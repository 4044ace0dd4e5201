package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/howto/internal/errors"
)

func TestSettings(t *testing.T) {
	database, _ := openTestDB(t)
	ctx := context.Background()

	if got := GetSettings(ctx, database); len(got) != 0 {
		t.Fatalf("GetSettings = %v, want empty", got)
	}
	if err := PutSetting(ctx, database, SettingLanguage, "ja"); err != nil {
		t.Fatal(err)
	}
	if err := PutSetting(ctx, database, SettingDarkMode, "true"); err != nil {
		t.Fatal(err)
	}
	if err := PutSetting(ctx, database, "theme", "x"); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("unknown key: err = %v, want INVALID_REQUEST", err)
	}

	got := GetSettings(ctx, database)
	if got[SettingLanguage] != "ja" || got[SettingDarkMode] != "true" || len(got) != 2 {
		t.Errorf("GetSettings = %v", got)
	}
}
