package model

import (
	"time"

	"github.com/google/uuid"
)

// ImportRecord describes one bulk import run. It is stored in the imports
// table after the run ends, whether or not the run succeeded.
type ImportRecord struct {
	// ID identifies the run. It also appears in log lines for the run.
	ID string `json:"id"`

	// Source is the file path or URL the lines came from.
	Source string `json:"source"`

	// Checksum is the SHA3-256 fingerprint of the raw source bytes.
	Checksum string `json:"checksum"`

	// TotalLines is the number of lines after splitting, blank lines included.
	TotalLines int `json:"total_lines"`

	// Accepted is the number of lines stored as new entries.
	Accepted int `json:"accepted"`

	// Skipped is the number of lines rejected as duplicate plaintexts.
	Skipped int `json:"skipped"`

	// Blank is the number of empty lines, which count as neither.
	Blank int `json:"blank"`

	// Failed is the number of lines that could not be turned into entries.
	Failed int `json:"failed"`

	// StartedAt is when ingestion began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when ingestion ended.
	FinishedAt time.Time `json:"finished_at"`

	// Error is the message of the error that aborted the run, if any.
	Error string `json:"error,omitempty"`
}

// NewImportRecord creates a record for a run over source starting now.
func NewImportRecord(source, checksum string, totalLines int) *ImportRecord {
	return &ImportRecord{
		ID:         uuid.NewString(),
		Source:     source,
		Checksum:   checksum,
		TotalLines: totalLines,
		StartedAt:  time.Now().UTC(),
	}
}

// Duration returns how long the run took.
func (r *ImportRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the run finished without an aborting error.
func (r *ImportRecord) Succeeded() bool {
	return r.Error == ""
}
