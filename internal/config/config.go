package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/rainbow/internal/database"
	"github.com/nao1215/rainbow/internal/report"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "rainbow"

	// LegacyDirName is the data directory in $HOME used by earlier releases.
	// It is still used when it exists so existing tables are found.
	LegacyDirName = ".rainbow"

	// DefaultMatchMode compares lookup values with equality.
	DefaultMatchMode = "exact"

	// DefaultBatchSize is the number of lines per import transaction.
	DefaultBatchSize = 1000

	// DefaultTimeout bounds each word list download.
	DefaultTimeout = 10 * time.Minute

	// DefaultUserAgent identifies rainbow in HTTP requests.
	DefaultUserAgent = "rainbow/1.0 (+https://github.com/nao1215/rainbow)"

	// DefaultMaxBodySize limits a downloaded word list to 1 GiB.
	DefaultMaxBodySize = 1 << 30

	// DefaultConcurrency is the number of word lists downloaded at once.
	DefaultConcurrency = 4

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Config holds all settings of a rainbow invocation. It is built once in the
// cmd package and passed down; no package reads settings from globals.
type Config struct {
	// DBDir is the directory holding rainbow.db.
	DBDir string

	// MatchMode is "exact" or "pattern". Pattern mode compares lookup
	// values with LIKE, so % and _ are wildcards.
	MatchMode string

	// BatchSize is the number of lines per import transaction.
	// A value of 1 inserts each line on its own.
	BatchSize int

	// ContinueOnError counts lines that cannot be stored as failed instead
	// of aborting the import.
	ContinueOnError bool

	// Timeout bounds each word list download.
	Timeout time.Duration

	// ProxyAddress is a SOCKS5 proxy in "host:port" format used for
	// downloads. Empty means direct connections.
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and downloads through it.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor daemon.
	TorStartupTimeout time.Duration

	// UserAgent is the User-Agent header sent with downloads.
	UserAgent string

	// MaxBodySize is the maximum download size in bytes. Zero means no limit.
	MaxBodySize int64

	// Encoding is the character set of word lists, e.g. "latin1".
	// Empty means the lists are read as UTF-8 bytes without decoding.
	Encoding string

	// StrictUTF8 stops invalid UTF-8 in lists read without an Encoding
	// from being replaced with U+FFFD, so such lines fail as bad lines.
	StrictUTF8 bool

	// Concurrency is the number of word lists downloaded at once.
	Concurrency int

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path given with --config.
	ConfigFilePath string

	// JSONReport selects JSON output.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		DBDir:             DefaultDBDir(),
		MatchMode:         DefaultMatchMode,
		BatchSize:         DefaultBatchSize,
		Timeout:           DefaultTimeout,
		TorStartupTimeout: DefaultTorStartupTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		Concurrency:       DefaultConcurrency,
	}
}

// DefaultDBDir returns ~/.rainbow when it exists and the XDG data directory otherwise.
func DefaultDBDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		legacy := filepath.Join(home, LegacyDirName)
		if info, err := os.Stat(legacy); err == nil && info.IsDir() {
			return legacy
		}
	}
	return XDGDataDir()
}

// XDGDataDir returns the XDG data directory for rainbow.
// On Linux: ~/.local/share/rainbow
// On macOS: ~/Library/Application Support/rainbow
// On Windows: %LOCALAPPDATA%\rainbow
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for rainbow.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Match returns MatchMode as a database.MatchMode.
func (c *Config) Match() (database.MatchMode, error) {
	mode, err := database.ParseMatchMode(c.MatchMode)
	if err != nil {
		return database.MatchExact, ErrInvalidMatchMode
	}
	return mode, nil
}

// ReportFormat returns the output format selected by the report flags.
func (c *Config) ReportFormat() report.Format {
	switch {
	case c.JSONReport:
		return report.FormatJSON
	case c.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// Validate returns the first invalid setting found, or nil.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBDir) == "" {
		return ErrEmptyDBDir
	}

	if _, err := c.Match(); err != nil {
		return err
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingProxy
	}

	return nil
}
