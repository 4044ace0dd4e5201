// Package prefs holds the process-wide UI preferences (language and dark
// mode). They are loaded once at startup and written back on every change.
package prefs

import (
	"context"
	"database/sql"
	"strconv"
	"sync"

	"github.com/hpungsan/howto/internal/i18n"
	"github.com/hpungsan/howto/internal/ops"
)

// Preferences is the persisted UI state.
type Preferences struct {
	Language string `json:"language"`
	DarkMode bool   `json:"darkMode"`
}

// Update changes the fields that are non-nil.
type Update struct {
	Language *string `json:"language,omitempty"`
	DarkMode *bool   `json:"darkMode,omitempty"`
}

// Store guards the current preferences. Safe for concurrent use.
type Store struct {
	db       *sql.DB
	fallback string

	mu      sync.RWMutex
	current Preferences
}

// New creates a store that falls back to defaultLanguage when nothing is
// saved. Call Load before use.
func New(database *sql.DB, defaultLanguage string) *Store {
	lang := i18n.Resolve(defaultLanguage)
	return &Store{
		db:       database,
		fallback: lang,
		current:  Preferences{Language: lang},
	}
}

// Load reads the saved preferences. Missing or unreadable values keep
// their defaults.
func (s *Store) Load(ctx context.Context) Preferences {
	settings := ops.GetSettings(ctx, s.db)

	p := Preferences{Language: s.fallback}
	if v, ok := settings[ops.SettingLanguage]; ok {
		p.Language = i18n.Resolve(v)
	}
	if v, ok := settings[ops.SettingDarkMode]; ok {
		p.DarkMode, _ = strconv.ParseBool(v)
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return p
}

// Get returns a copy of the current preferences.
func (s *Store) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Language returns the current UI language code.
func (s *Store) Language() string {
	return s.Get().Language
}

// Apply updates and persists the given fields. Unsupported languages
// resolve to the default.
func (s *Store) Apply(ctx context.Context, u Update) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if u.Language != nil {
		next.Language = i18n.Resolve(*u.Language)
		if err := ops.PutSetting(ctx, s.db, ops.SettingLanguage, next.Language); err != nil {
			return s.current, err
		}
	}
	if u.DarkMode != nil {
		next.DarkMode = *u.DarkMode
		if err := ops.PutSetting(ctx, s.db, ops.SettingDarkMode, strconv.FormatBool(next.DarkMode)); err != nil {
			return s.current, err
		}
	}

	s.current = next
	return next, nil
}
