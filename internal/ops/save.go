package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/howto/internal/db"
	"github.com/hpungsan/howto/internal/errors"
	"github.com/hpungsan/howto/internal/tutorial"
)

// SaveInput contains parameters for the SaveTutorial operation.
type SaveInput struct {
	Query     string `json:"query"`   // required
	Summary   string `json:"summary"` // LLM guide text
	Title     string `json:"title"`   // default: "How to <query>"
	DateSaved string `json:"dateSaved"`

	// Optional details; extracted from Summary when all are empty
	Tools        []string `json:"tools,omitempty"`
	TimeEstimate string   `json:"timeEstimate,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
}

// SaveOutput contains the result of the SaveTutorial operation.
// Tutorial is nil only when storage failed.
type SaveOutput struct {
	Created  bool                    `json:"created"`
	Tutorial *tutorial.SavedTutorial `json:"tutorial"`
}

// SaveTutorial stores a tutorial unless one already exists for the same
// normalized query, in which case the existing entry is returned unchanged.
func SaveTutorial(ctx context.Context, database *sql.DB, input SaveInput) (*SaveOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}
	queryNorm := normalizeQuery(input.Query)

	existing, err := db.GetByQueryNorm(ctx, database, queryNorm)
	switch {
	case err == nil:
		return &SaveOutput{Created: false, Tutorial: existing}, nil
	case !errors.Is(err, errors.ErrNotFound):
		logStorage("save", err, slog.String("query", input.Query))
		return &SaveOutput{}, nil
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	ts := nowMillis()
	t := &tutorial.SavedTutorial{
		ID:           id,
		Title:        strings.TrimSpace(input.Title),
		Query:        input.Query,
		QueryNorm:    queryNorm,
		Summary:      input.Summary,
		DateSaved:    strings.TrimSpace(input.DateSaved),
		Timestamp:    ts,
		Tools:        cleanTools(input.Tools),
		TimeEstimate: strings.TrimSpace(input.TimeEstimate),
		Difficulty:   strings.TrimSpace(input.Difficulty),
	}
	if t.Title == "" {
		t.Title = tutorial.DefaultTitle(strings.TrimSpace(input.Query))
	}
	if t.DateSaved == "" {
		t.DateSaved = formatDate(ts)
	}
	if len(t.Tools) == 0 && t.TimeEstimate == "" && t.Difficulty == "" {
		d := tutorial.ExtractDetails(input.Summary)
		t.Tools, t.TimeEstimate, t.Difficulty = d.Tools, d.TimeEstimate, d.Difficulty
	}

	if err := db.Insert(ctx, database, t); err != nil {
		if err == db.ErrUniqueConstraint {
			// Lost a race with a concurrent save of the same query.
			if existing, getErr := db.GetByQueryNorm(ctx, database, queryNorm); getErr == nil {
				return &SaveOutput{Created: false, Tutorial: existing}, nil
			}
		}
		logStorage("save", err, slog.String("query", input.Query))
		return &SaveOutput{}, nil
	}

	return &SaveOutput{Created: true, Tutorial: t}, nil
}

// IsSaved reports whether a tutorial exists for the normalized query.
func IsSaved(ctx context.Context, database *sql.DB, q string) bool {
	queryNorm := normalizeQuery(q)
	if queryNorm == "" {
		return false
	}
	ok, err := db.ExistsByQueryNorm(ctx, database, queryNorm)
	if err != nil {
		logStorage("is_saved", err, slog.String("query", q))
		return false
	}
	return ok
}

func cleanTools(tools []string) []string {
	var out []string
	for _, tool := range tools {
		if s := strings.TrimSpace(tool); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// generateULID creates a new ULID using crypto/rand for entropy.
func generateULID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
