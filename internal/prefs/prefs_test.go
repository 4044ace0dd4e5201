package prefs

import (
	"context"
	"testing"

	"github.com/hpungsan/howto/internal/db"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestStore_DefaultsThenPersist(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	ctx := context.Background()

	s := New(database, "fr")
	if got := s.Load(ctx); got.Language != "fr" || got.DarkMode {
		t.Fatalf("Load() = %+v, want fr/light", got)
	}

	got, err := s.Apply(ctx, Update{Language: strPtr("ES-mx"), DarkMode: boolPtr(true)})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got.Language != "es" || !got.DarkMode {
		t.Errorf("Apply() = %+v, want es/dark", got)
	}

	// A fresh store reads the persisted values.
	reloaded := New(database, "en").Load(ctx)
	if reloaded.Language != "es" || !reloaded.DarkMode {
		t.Errorf("reloaded = %+v, want es/dark", reloaded)
	}
}

func TestStore_PartialUpdateAndUnknownLanguage(t *testing.T) {
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	ctx := context.Background()

	s := New(database, "en")
	s.Load(ctx)

	if _, err := s.Apply(ctx, Update{DarkMode: boolPtr(true)}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Apply(ctx, Update{Language: strPtr("klingon")})
	if err != nil {
		t.Fatal(err)
	}
	if got.Language != "en" || !got.DarkMode {
		t.Errorf("Apply() = %+v, want en/dark", got)
	}
	if s.Language() != "en" {
		t.Errorf("Language() = %q", s.Language())
	}
}

func TestStore_LoadSurvivesClosedDB(t *testing.T) {
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	database.Close()

	got := New(database, "de").Load(context.Background())
	if got.Language != "de" {
		t.Errorf("Load() = %+v, want defaults", got)
	}
}
