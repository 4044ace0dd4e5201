package ops

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/hpungsan/howto/internal/db"
	"github.com/hpungsan/howto/internal/errors"
	"github.com/hpungsan/howto/internal/tutorial"
)

// FetchInput addresses a saved tutorial by ID or by query, never both.
type FetchInput struct {
	ID    string `json:"id"`
	Query string `json:"query"`
}

// FetchSaved retrieves one saved tutorial.
// Storage failures are logged and reported as NOT_FOUND.
func FetchSaved(ctx context.Context, database *sql.DB, input FetchInput) (*tutorial.SavedTutorial, error) {
	id := strings.TrimSpace(input.ID)
	q := strings.TrimSpace(input.Query)

	if id != "" && q != "" {
		return nil, errors.NewInvalidRequest("specify either id or query, not both")
	}
	if id == "" && q == "" {
		return nil, errors.NewInvalidRequest("must specify either id or query")
	}

	var (
		t   *tutorial.SavedTutorial
		err error
	)
	if id != "" {
		t, err = db.GetByID(ctx, database, id)
	} else {
		t, err = db.GetByQueryNorm(ctx, database, normalizeQuery(q))
	}
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NewNotFound(id + q)
		}
		logStorage("fetch", err, slog.String("id", id), slog.String("query", q))
		return nil, errors.NewNotFound(id + q)
	}
	return t, nil
}
