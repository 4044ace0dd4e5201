package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/hpungsan/howto/internal/errors"
	"github.com/hpungsan/howto/internal/tutorial"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.HowtoError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

const tutorialColumns = `id, title, query_raw, query_norm, summary, date_saved,
	timestamp, tools_json, time_estimate, difficulty`

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Insert stores a new saved tutorial.
func Insert(ctx context.Context, db Execer, t *tutorial.SavedTutorial) error {
	var toolsJSON sql.NullString
	if len(t.Tools) > 0 {
		data, err := json.Marshal(t.Tools)
		if err != nil {
			return errors.NewInternal(err)
		}
		toolsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO saved_tutorials (` + tutorialColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		t.ID, t.Title, t.Query, t.QueryNorm, t.Summary, t.DateSaved,
		t.Timestamp, toolsJSON, toNullString(t.TimeEstimate), toNullString(t.Difficulty),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewStorage(err)
	}

	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a saved tutorial by its ULID.
func GetByID(ctx context.Context, db Querier, id string) (*tutorial.SavedTutorial, error) {
	query := `SELECT ` + tutorialColumns + ` FROM saved_tutorials WHERE id = ?`

	t, err := scanTutorial(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewStorage(err)
	}
	return t, nil
}

// GetByQueryNorm retrieves the saved tutorial for a normalized query.
func GetByQueryNorm(ctx context.Context, db Querier, queryNorm string) (*tutorial.SavedTutorial, error) {
	query := `SELECT ` + tutorialColumns + ` FROM saved_tutorials WHERE query_norm = ?`

	t, err := scanTutorial(db.QueryRowContext(ctx, query, queryNorm))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(queryNorm)
	}
	if err != nil {
		return nil, errors.NewStorage(err)
	}
	return t, nil
}

// ExistsByQueryNorm reports whether a tutorial is saved for a normalized query.
func ExistsByQueryNorm(ctx context.Context, db Querier, queryNorm string) (bool, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT 1 FROM saved_tutorials WHERE query_norm = ? LIMIT 1`, queryNorm,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewStorage(err)
	}
	return true, nil
}

// ListAll returns every saved tutorial in save order.
// Ties on timestamp keep insertion order.
func ListAll(ctx context.Context, db *sql.DB) ([]tutorial.SavedTutorial, error) {
	rows, err := StreamAll(ctx, db)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []tutorial.SavedTutorial
	for rows.Next() {
		t, err := ScanTutorialFromRows(rows)
		if err != nil {
			return nil, errors.NewStorage(err)
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage(err)
	}
	return items, nil
}

// StreamAll returns a cursor over every saved tutorial in save order.
// The caller must close the rows.
func StreamAll(ctx context.Context, db *sql.DB) (*sql.Rows, error) {
	query := `SELECT ` + tutorialColumns + ` FROM saved_tutorials ORDER BY timestamp ASC, rowid ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewStorage(err)
	}
	return rows, nil
}

// DeleteByID removes a saved tutorial. Returns false if no row matched.
func DeleteByID(ctx context.Context, db *sql.DB, id string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM saved_tutorials WHERE id = ?`, id)
	if err != nil {
		return false, errors.NewStorage(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewStorage(err)
	}
	return n > 0, nil
}

// SetSetting inserts or replaces the value stored under key.
func SetSetting(ctx context.Context, db *sql.DB, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
		return errors.NewStorage(err)
	}
	return nil
}

// ListSettings returns every stored setting.
func ListSettings(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, errors.NewStorage(err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, errors.NewStorage(err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage(err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanTutorial scans a single row into a SavedTutorial.
func scanTutorial(row scanner) (*tutorial.SavedTutorial, error) {
	var (
		t            tutorial.SavedTutorial
		toolsJSON    sql.NullString
		timeEstimate sql.NullString
		difficulty   sql.NullString
	)

	err := row.Scan(
		&t.ID, &t.Title, &t.Query, &t.QueryNorm, &t.Summary, &t.DateSaved,
		&t.Timestamp, &toolsJSON, &timeEstimate, &difficulty,
	)
	if err != nil {
		return nil, err
	}

	t.TimeEstimate = timeEstimate.String
	t.Difficulty = difficulty.String

	if toolsJSON.Valid && toolsJSON.String != "" {
		if err := json.Unmarshal([]byte(toolsJSON.String), &t.Tools); err != nil {
			return nil, err
		}
	}

	return &t, nil
}

// ScanTutorialFromRows scans the current row of a StreamAll cursor.
func ScanTutorialFromRows(rows *sql.Rows) (*tutorial.SavedTutorial, error) {
	return scanTutorial(rows)
}

// toNullString maps "" to NULL.
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
