package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".rainbow.yaml"

// DotEnvFile is the dotenv file read from the working directory.
const DotEnvFile = ".env"

// EnvPrefix prefixes every environment variable rainbow reads.
const EnvPrefix = "RAINBOW_"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .rainbow.yaml in the current directory
// 3. Look for .rainbow.yaml in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv copies RAINBOW_* variables into cfg.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return v, ok && v != ""
	}

	if v, ok := get("DB_DIR"); ok {
		cfg.DBDir = ExpandHome(v)
	}
	if v, ok := get("MATCH_MODE"); ok {
		cfg.MatchMode = v
	}
	if v, ok := get("BATCH_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("BATCH_SIZE", v, err)
		}
		cfg.BatchSize = n
	}
	if v, ok := get("CONTINUE_ON_ERROR"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("CONTINUE_ON_ERROR", v, err)
		}
		cfg.ContinueOnError = b
	}
	if v, ok := get("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("TIMEOUT", v, err)
		}
		cfg.Timeout = d
	}
	if v, ok := get("PROXY"); ok {
		cfg.ProxyAddress = v
	}
	if v, ok := get("USER_AGENT"); ok {
		cfg.UserAgent = v
	}
	if v, ok := get("MAX_BODY_SIZE"); ok {
		n, err := ParseByteSize(v)
		if err != nil {
			return envError("MAX_BODY_SIZE", v, err)
		}
		cfg.MaxBodySize = n
	}
	if v, ok := get("ENCODING"); ok {
		cfg.Encoding = v
	}
	if v, ok := get("STRICT_UTF8"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("STRICT_UTF8", v, err)
		}
		cfg.StrictUTF8 = b
	}
	if v, ok := get("CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("CONCURRENCY", v, err)
		}
		cfg.Concurrency = n
	}
	return nil
}

func envError(name, value string, err error) error {
	return fmt.Errorf("invalid %s%s=%q: %w", EnvPrefix, name, value, err)
}

// Load builds a Config from defaults, the configuration file, the .env file
// and the environment. An explicit configPath that does not exist is an error;
// a missing default file is not.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()
	cfg.ConfigFilePath = configPath

	path := FindConfigFile(configPath)
	if configPath != "" && path == "" {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}
	if path != "" {
		file, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid configuration file %s: %w", path, err)
		}
	}

	if err := LoadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}
