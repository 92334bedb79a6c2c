package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrEmptyDBDir is returned when no data directory is configured.
	ErrEmptyDBDir = errors.New("invalid database directory: must not be empty")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidConcurrency is returned when the download concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Zero means no limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidMatchMode is returned for a match mode other than exact or pattern.
	ErrInvalidMatchMode = errors.New("invalid match mode: must be exact or pattern")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingProxy is returned when both a SOCKS5 proxy and the
	// embedded Tor daemon are requested.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")
)
