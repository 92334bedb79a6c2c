package database

import (
	"context"
	"time"

	"github.com/nao1215/rainbow/internal/model"
)

// SaveImport stores the outcome of an import run.
func (rdb *RainbowDB) SaveImport(ctx context.Context, record *model.ImportRecord) error {
	query := `
	INSERT INTO imports (id, source, checksum, total_lines, accepted, skipped, blank, failed,
		started_at, finished_at, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := rdb.db.ExecContext(ctx, query,
		record.ID,
		record.Source,
		record.Checksum,
		record.TotalLines,
		record.Accepted,
		record.Skipped,
		record.Blank,
		record.Failed,
		formatTimestamp(record.StartedAt),
		formatTimestamp(record.FinishedAt),
		record.Error,
	)
	return storageError("save import record", err)
}

// ListImports returns the most recent import records, newest first.
// A limit of zero or less returns every record.
func (rdb *RainbowDB) ListImports(ctx context.Context, limit int) ([]model.ImportRecord, error) {
	query := `
	SELECT id, source, checksum, total_lines, accepted, skipped, blank, failed,
		started_at, finished_at, error
	FROM imports
	ORDER BY started_at DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("list import records", err)
	}
	defer rows.Close()

	var records []model.ImportRecord
	for rows.Next() {
		var r model.ImportRecord
		var startedAt, finishedAt string

		err := rows.Scan(
			&r.ID,
			&r.Source,
			&r.Checksum,
			&r.TotalLines,
			&r.Accepted,
			&r.Skipped,
			&r.Blank,
			&r.Failed,
			&startedAt,
			&finishedAt,
			&r.Error,
		)
		if err != nil {
			return nil, storageError("scan import record", err)
		}

		r.StartedAt = parseTimestamp(startedAt)
		r.FinishedAt = parseTimestamp(finishedAt)
		records = append(records, r)
	}

	return records, storageError("list import records", rows.Err())
}

// timestampLayout sorts lexically in time order, which ListImports relies on.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTimestamp formats t in UTC with fixed-width fractional seconds.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats accepted when reading.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, it returns the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
