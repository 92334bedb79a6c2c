package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/rainbow/internal/config"
	"github.com/nao1215/rainbow/internal/database"
	"github.com/nao1215/rainbow/internal/log"
	"github.com/nao1215/rainbow/internal/report"
)

// env is what every subcommand needs: the resolved configuration, a logger
// and the command's output streams.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer
}

// newEnv resolves the configuration for cmd and sets up logging.
// Flags win over the environment, which wins over the configuration file.
func newEnv(cmd *cobra.Command) (*env, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return nil, err
	}

	logger := log.New(cmd.ErrOrStderr(), cfg.Verbose, logJSON)
	slog.SetDefault(logger)

	return &env{
		cfg:    cfg,
		logger: logger,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}, nil
}

// applyFlags copies the flags the user actually set on cmd into cfg.
// Flags that cmd does not define are ignored.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	set := func(name string, apply func() error) {
		if err == nil && flags.Changed(name) {
			err = apply()
		}
	}

	set("verbose", func() (e error) {
		cfg.Verbose, e = flags.GetBool("verbose")
		return e
	})
	set("db-dir", func() error {
		dir, e := flags.GetString("db-dir")
		cfg.DBDir = config.ExpandHome(dir)
		return e
	})
	set("pattern", func() error {
		pattern, e := flags.GetBool("pattern")
		if pattern {
			cfg.MatchMode = database.MatchPattern.String()
		}
		return e
	})
	set("batch-size", func() (e error) {
		cfg.BatchSize, e = flags.GetInt("batch-size")
		return e
	})
	set("continue-on-error", func() (e error) {
		cfg.ContinueOnError, e = flags.GetBool("continue-on-error")
		return e
	})
	set("encoding", func() (e error) {
		cfg.Encoding, e = flags.GetString("encoding")
		return e
	})
	set("strict-utf8", func() (e error) {
		cfg.StrictUTF8, e = flags.GetBool("strict-utf8")
		return e
	})
	set("proxy", func() (e error) {
		cfg.ProxyAddress, e = flags.GetString("proxy")
		return e
	})
	set("tor", func() (e error) {
		cfg.UseTor, e = flags.GetBool("tor")
		return e
	})
	set("tor-timeout", func() (e error) {
		cfg.TorStartupTimeout, e = flags.GetDuration("tor-timeout")
		return e
	})
	set("timeout", func() (e error) {
		cfg.Timeout, e = flags.GetDuration("timeout")
		return e
	})
	set("concurrency", func() (e error) {
		cfg.Concurrency, e = flags.GetInt("concurrency")
		return e
	})
	set("user-agent", func() (e error) {
		cfg.UserAgent, e = flags.GetString("user-agent")
		return e
	})
	set("max-body-size", func() error {
		raw, e := flags.GetString("max-body-size")
		if e != nil {
			return e
		}
		size, e := config.ParseByteSize(raw)
		if e != nil {
			return fmt.Errorf("invalid --max-body-size %q: %w", raw, e)
		}
		cfg.MaxBodySize = size
		return nil
	})
	set("json", func() (e error) {
		cfg.JSONReport, e = flags.GetBool("json")
		return e
	})
	set("markdown", func() (e error) {
		cfg.MarkdownReport, e = flags.GetBool("markdown")
		return e
	})

	return err
}

// addReportFlags adds the output format flags shared by the reporting commands.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().Bool("markdown", false, "Output as Markdown")
}

// openStore opens the rainbow table configured in e.
func (e *env) openStore() (*database.RainbowDB, error) {
	mode, err := e.cfg.Match()
	if err != nil {
		return nil, err
	}

	opts := database.DefaultOptions()
	opts.MatchMode = mode

	db, err := database.Open(e.cfg.DBDir, opts)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("opened rainbow table", "path", db.Path(), "match_mode", mode.String())
	return db, nil
}

// closeStore closes db and logs a failure; there is nothing else to do with it.
func (e *env) closeStore(db *database.RainbowDB) {
	if err := db.Close(); err != nil {
		e.logger.Warn("failed to close rainbow table", "error", err)
	}
}

// reportWriter returns a writer for the configured output format.
func (e *env) reportWriter(output io.Writer) (report.Writer, error) {
	return report.New(e.cfg.ReportFormat(), output)
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
// The returned stop function releases the signal handler.
func (e *env) signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			e.logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// createOutputFile creates path with owner-only permissions, making parent
// directories as needed.
func createOutputFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // Output path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
