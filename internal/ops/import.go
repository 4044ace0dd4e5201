package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hpungsan/howto/internal/db"
	"github.com/hpungsan/howto/internal/errors"
	"github.com/hpungsan/howto/internal/tutorial"
)

// ImportMode controls collision behavior during import.
// A collision is an existing tutorial with the same normalized query.
type ImportMode string

const (
	ImportModeSkip  ImportMode = "skip"  // keep the existing entry, like a repeated save
	ImportModeError ImportMode = "error" // fail on any collision (atomic)
)

// maxImportLine bounds a single JSONL line (summaries can be long).
const maxImportLine = 4 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: skip
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes a line that was not imported.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Query   string `json:"query,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type importRecord struct {
	line int
	t    tutorial.SavedTutorial
}

// Import loads saved tutorials from a JSONL export file.
// Query norms are recomputed; ids that are already taken are replaced with
// fresh ULIDs.
func Import(ctx context.Context, database *sql.DB, exportsDir string, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeSkip
	}
	if input.Mode != ImportModeSkip && input.Mode != ImportModeError {
		return nil, errors.NewInvalidRequest("mode must be one of: skip, error")
	}

	if err := ValidatePath(input.Path, PathCheckRead, exportsDir); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	records, parseErrors := parseExportFile(file)

	if input.Mode == ImportModeError {
		if len(parseErrors) > 0 {
			return &ImportOutput{Errors: parseErrors}, nil
		}
		return importModeError(ctx, database, records)
	}
	return importModeSkip(ctx, database, records, parseErrors)
}

// parseExportFile reads tutorial records, skipping the header line.
func parseExportFile(r io.Reader) ([]importRecord, []ImportError) {
	var records []importRecord
	var parseErrors []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var rec exportRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}
		if rec.HowtoExport {
			continue
		}

		t := rec.SavedTutorial
		t.QueryNorm = normalizeQuery(t.Query)
		if t.QueryNorm == "" {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				ID:      t.ID,
				Code:    "INVALID_RECORD",
				Message: "missing query field",
			})
			continue
		}
		if t.Title == "" {
			t.Title = tutorial.DefaultTitle(strings.TrimSpace(t.Query))
		}
		records = append(records, importRecord{line: lineNum, t: t})
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, parseErrors
}

// prepare fills ids and timestamps and reports whether the query is taken.
// Lookups run on q so that inside a transaction they see earlier inserts.
func prepare(ctx context.Context, q db.Querier, t *tutorial.SavedTutorial) (bool, error) {
	exists, err := db.ExistsByQueryNorm(ctx, q, t.QueryNorm)
	if err != nil || exists {
		return exists, err
	}

	if t.ID == "" {
		t.ID, err = generateULID()
	} else if _, getErr := db.GetByID(ctx, q, t.ID); getErr == nil {
		t.ID, err = generateULID()
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	if t.Timestamp == 0 {
		t.Timestamp = nowMillis()
	}
	if t.DateSaved == "" {
		t.DateSaved = formatDate(t.Timestamp)
	}
	return false, nil
}

// importModeSkip imports every record whose query is not already saved.
func importModeSkip(ctx context.Context, database *sql.DB, records []importRecord, parseErrors []ImportError) (*ImportOutput, error) {
	out := &ImportOutput{Errors: parseErrors, Skipped: len(parseErrors)}

	for _, rec := range records {
		t := rec.t
		exists, err := prepare(ctx, database, &t)
		if err != nil {
			return nil, err
		}
		if exists {
			out.Skipped++
			continue
		}
		if err := db.Insert(ctx, database, &t); err != nil {
			out.Errors = append(out.Errors, ImportError{
				Line:    rec.line,
				ID:      t.ID,
				Query:   t.Query,
				Code:    "INSERT_FAILED",
				Message: fmt.Sprintf("failed to insert: %v", err),
			})
			out.Skipped++
			continue
		}
		out.Imported++
	}

	return out, nil
}

// importModeError imports all records in one transaction and aborts on the
// first collision, including duplicates within the file itself.
func importModeError(ctx context.Context, database *sql.DB, records []importRecord) (*ImportOutput, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewStorage(err)
	}
	defer tx.Rollback() //nolint:errcheck

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		t := rec.t
		exists, err := prepare(ctx, tx, &t)
		if err != nil {
			return nil, err
		}
		if exists || seen[t.QueryNorm] {
			return &ImportOutput{Errors: []ImportError{{
				Line:    rec.line,
				ID:      t.ID,
				Query:   t.Query,
				Code:    "QUERY_COLLISION",
				Message: fmt.Sprintf("a tutorial for %q is already saved", t.Query),
			}}}, nil
		}
		seen[t.QueryNorm] = true

		if err := db.Insert(ctx, tx, &t); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewStorage(err)
	}

	return &ImportOutput{Imported: len(records)}, nil
}
