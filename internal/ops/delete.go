package ops

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/hpungsan/howto/internal/db"
)

// DeleteOutput contains the result of the DeleteSaved operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeleteSaved removes exactly the tutorial with the given id.
// An unknown id or a storage failure is a no-op.
func DeleteSaved(ctx context.Context, database *sql.DB, id string) *DeleteOutput {
	id = strings.TrimSpace(id)
	out := &DeleteOutput{ID: id}
	if id == "" {
		return out
	}

	deleted, err := db.DeleteByID(ctx, database, id)
	if err != nil {
		logStorage("delete", err, slog.String("id", id))
		return out
	}
	out.Deleted = deleted
	return out
}
