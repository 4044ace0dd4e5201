// Package ops implements saved tutorial and settings operations on top of
// internal/db. Storage failures are logged here and degrade to empty results
// or no-ops so callers never surface them as request failures.
package ops

import (
	"log/slog"
	"time"

	"github.com/hpungsan/howto/internal/query"
)

// dateLayout is the ISO 8601 calendar date used for dateSaved.
const dateLayout = "2006-01-02"

// normalizeQuery returns the uniqueness key for a saved query.
func normalizeQuery(q string) string {
	return query.Normalize(q)
}

// nowMillis is replaceable in tests.
var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}

// formatDate renders a Unix millisecond timestamp as an ISO date (UTC).
func formatDate(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(dateLayout)
}

// logStorage records an absorbed storage failure.
func logStorage(op string, err error, attrs ...any) {
	args := append([]any{slog.String("op", op), slog.Any("error", err)}, attrs...)
	slog.Warn("saved tutorials storage failure", args...)
}
