package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hpungsan/howto/internal/errors"
	"github.com/hpungsan/howto/internal/tutorial"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func newTestTutorial(id, query string, ts int64) *tutorial.SavedTutorial {
	return &tutorial.SavedTutorial{
		ID:        id,
		Title:     tutorial.DefaultTitle(query),
		Query:     query,
		QueryNorm: query,
		Summary:   "Step 1: start. Step 2: finish.",
		DateSaved: "2026-01-02",
		Timestamp: ts,
	}
}

func TestInsertAndGetByID(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	tut := newTestTutorial("01ABC", "tie a tie", 1000)
	tut.Tools = []string{"tie", "mirror"}
	tut.TimeEstimate = "5 minutes"
	tut.Difficulty = "Easy"

	if err := Insert(ctx, database, tut); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := GetByID(ctx, database, "01ABC")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Query != "tie a tie" || got.QueryNorm != "tie a tie" {
		t.Errorf("query = %q/%q", got.Query, got.QueryNorm)
	}
	if got.Title != "How to tie a tie" {
		t.Errorf("Title = %q", got.Title)
	}
	if len(got.Tools) != 2 || got.Tools[1] != "mirror" {
		t.Errorf("Tools = %v", got.Tools)
	}
	if got.TimeEstimate != "5 minutes" || got.Difficulty != "Easy" {
		t.Errorf("details = %q/%q", got.TimeEstimate, got.Difficulty)
	}
	if got.Timestamp != 1000 || got.DateSaved != "2026-01-02" {
		t.Errorf("timestamp/date = %d/%q", got.Timestamp, got.DateSaved)
	}
}

func TestInsert_OptionalDetailsStayEmpty(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if err := Insert(ctx, database, newTestTutorial("01A", "bake bread", 1)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	got, err := GetByID(ctx, database, "01A")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Tools != nil || got.TimeEstimate != "" || got.Difficulty != "" {
		t.Errorf("expected empty details, got %+v", got)
	}
}

func TestInsert_DuplicateQueryNorm(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if err := Insert(ctx, database, newTestTutorial("01A", "tie a tie", 1)); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}
	err := Insert(ctx, database, newTestTutorial("01B", "tie a tie", 2))
	if err != ErrUniqueConstraint {
		t.Fatalf("second Insert error = %v, want ErrUniqueConstraint", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	database := openTestDB(t)

	_, err := GetByID(context.Background(), database, "missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetByID error = %v, want NOT_FOUND", err)
	}
}

func TestGetByQueryNormAndExists(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if err := Insert(ctx, database, newTestTutorial("01A", "fix a bike", 1)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := GetByQueryNorm(ctx, database, "fix a bike")
	if err != nil {
		t.Fatalf("GetByQueryNorm failed: %v", err)
	}
	if got.ID != "01A" {
		t.Errorf("ID = %q, want 01A", got.ID)
	}

	if _, err := GetByQueryNorm(ctx, database, "fix a car"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetByQueryNorm(missing) error = %v, want NOT_FOUND", err)
	}

	ok, err := ExistsByQueryNorm(ctx, database, "fix a bike")
	if err != nil || !ok {
		t.Errorf("ExistsByQueryNorm = %v, %v; want true", ok, err)
	}
	ok, err = ExistsByQueryNorm(ctx, database, "fix a car")
	if err != nil || ok {
		t.Errorf("ExistsByQueryNorm(missing) = %v, %v; want false", ok, err)
	}
}

func TestListAll_SaveOrder(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	// Same timestamp for the last two: insertion order breaks the tie.
	for _, tut := range []*tutorial.SavedTutorial{
		newTestTutorial("01C", "third query", 5),
		newTestTutorial("01A", "first query", 1),
		newTestTutorial("01B", "second query", 5),
	} {
		if err := Insert(ctx, database, tut); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	items, err := ListAll(ctx, database)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	want := []string{"01A", "01C", "01B"}
	if len(items) != len(want) {
		t.Fatalf("len(items) = %d, want %d", len(items), len(want))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("items[%d].ID = %q, want %q", i, items[i].ID, id)
		}
	}
}

func TestDeleteByID(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	for _, tut := range []*tutorial.SavedTutorial{
		newTestTutorial("01A", "first query", 1),
		newTestTutorial("01B", "second query", 2),
	} {
		if err := Insert(ctx, database, tut); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	deleted, err := DeleteByID(ctx, database, "01A")
	if err != nil || !deleted {
		t.Fatalf("DeleteByID = %v, %v; want true", deleted, err)
	}
	deleted, err = DeleteByID(ctx, database, "01A")
	if err != nil || deleted {
		t.Errorf("second DeleteByID = %v, %v; want false", deleted, err)
	}

	items, err := ListAll(ctx, database)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "01B" {
		t.Errorf("items = %+v, want only 01B", items)
	}
}

func TestSettings(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if all, err := ListSettings(ctx, database); err != nil || len(all) != 0 {
		t.Fatalf("ListSettings(empty) = %v, %v; want empty", all, err)
	}

	if err := SetSetting(ctx, database, "language", "fr"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := SetSetting(ctx, database, "language", "de"); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}
	if err := SetSetting(ctx, database, "dark_mode", "true"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	all, err := ListSettings(ctx, database)
	if err != nil {
		t.Fatalf("ListSettings failed: %v", err)
	}
	if len(all) != 2 || all["language"] != "de" || all["dark_mode"] != "true" {
		t.Errorf("ListSettings = %v", all)
	}
}

func TestStorageErrorsAfterClose(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	database.Close()

	if _, err := ListAll(context.Background(), database); !errors.Is(err, errors.ErrStorage) {
		t.Errorf("ListAll on closed db error = %v, want STORAGE", err)
	}
}
