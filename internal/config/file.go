package config

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// File is the structure of the YAML configuration file. Unset keys leave
// the current value of Config alone.
type File struct {
	// DBDir is the directory holding rainbow.db. A leading "~" is expanded.
	DBDir string `yaml:"dbDir,omitempty"`

	// MatchMode is "exact" or "pattern".
	MatchMode string `yaml:"matchMode,omitempty"`

	// BatchSize is the number of lines per import transaction.
	BatchSize *int `yaml:"batchSize,omitempty"`

	// ContinueOnError counts bad lines as failed instead of aborting.
	ContinueOnError *bool `yaml:"continueOnError,omitempty"`

	// Timeout is a Go duration such as "90s" or "10m".
	Timeout string `yaml:"timeout,omitempty"`

	// Proxy is a SOCKS5 proxy in "host:port" format.
	Proxy string `yaml:"proxy,omitempty"`

	// UserAgent is the User-Agent header sent with downloads.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxBodySize is a byte count such as "512MiB" or "2GB"; "0" disables the limit.
	MaxBodySize string `yaml:"maxBodySize,omitempty"`

	// Encoding is the character set of word lists.
	Encoding string `yaml:"encoding,omitempty"`

	// StrictUTF8 treats invalid UTF-8 as bad lines instead of replacing it.
	StrictUTF8 *bool `yaml:"strictUTF8,omitempty"`

	// Concurrency is the number of word lists downloaded at once.
	Concurrency *int `yaml:"concurrency,omitempty"`
}

// Apply copies the keys set in f into cfg.
func (f *File) Apply(cfg *Config) error {
	if f.DBDir != "" {
		cfg.DBDir = ExpandHome(f.DBDir)
	}
	if f.MatchMode != "" {
		cfg.MatchMode = f.MatchMode
	}
	if f.BatchSize != nil {
		cfg.BatchSize = *f.BatchSize
	}
	if f.ContinueOnError != nil {
		cfg.ContinueOnError = *f.ContinueOnError
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", f.Timeout, err)
		}
		cfg.Timeout = d
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.MaxBodySize != "" {
		n, err := ParseByteSize(f.MaxBodySize)
		if err != nil {
			return err
		}
		cfg.MaxBodySize = n
	}
	if f.Encoding != "" {
		cfg.Encoding = f.Encoding
	}
	if f.StrictUTF8 != nil {
		cfg.StrictUTF8 = *f.StrictUTF8
	}
	if f.Concurrency != nil {
		cfg.Concurrency = *f.Concurrency
	}
	return nil
}

// ParseByteSize parses a size like "512MiB", "2GB" or "1048576".
func ParseByteSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("invalid byte size %q: too large", s)
	}
	return int64(n), nil
}
