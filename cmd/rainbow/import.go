package main

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/rainbow/internal/config"
	"github.com/nao1215/rainbow/internal/database"
	"github.com/nao1215/rainbow/internal/ingest"
	"github.com/nao1215/rainbow/internal/model"
	"github.com/nao1215/rainbow/internal/progress"
	"github.com/nao1215/rainbow/internal/source"
	"github.com/nao1215/rainbow/internal/transport"
)

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <path-or-url>...",
		Short: "Add every line of one or more word lists",
		Long: `Import reads word lists from files or http(s) URLs and adds each line to
the rainbow table. Blank lines and strings already in the table are skipped.

Downloads run concurrently; lines are stored one list at a time, in the
order given. Every run is recorded and shown by "rainbow history".

Examples:
  # Import a local file in batches of 1000 lines
  rainbow import rockyou.txt

  # Download a list through a SOCKS5 proxy
  rainbow import --proxy 127.0.0.1:9050 https://example.com/words.txt

  # Download through an embedded Tor daemon
  rainbow import --tor https://example.com/words.txt

  # Decode a Latin-1 list and keep going past lines that cannot be stored
  rainbow import --encoding latin1 --continue-on-error words.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportCmd,
	}

	cmd.Flags().Int("batch-size", config.DefaultBatchSize,
		"Lines per transaction (1 stores each line on its own)")
	cmd.Flags().Bool("continue-on-error", false,
		"Count lines that cannot be stored as failed instead of aborting")
	cmd.Flags().String("encoding", "",
		"Character set of the word lists, e.g. latin1 (default: UTF-8)")
	cmd.Flags().Bool("strict-utf8", false,
		"Treat invalid UTF-8 as bad lines instead of replacing it with U+FFFD")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy for downloads in host:port format")
	cmd.Flags().Bool("tor", false,
		"Download through an embedded Tor daemon")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Maximum time to wait for the embedded Tor daemon to start")
	cmd.Flags().Duration("timeout", config.DefaultTimeout,
		"Timeout of each download")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of word lists downloaded at once")
	cmd.Flags().String("max-body-size", humanize.IBytes(config.DefaultMaxBodySize),
		"Largest download accepted, e.g. 512MiB (0 for no limit)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with downloads")
	cmd.Flags().Bool("no-progress", false,
		"Do not show a progress bar")

	return cmd
}

// runImportCmd executes the import command.
func runImportCmd(cmd *cobra.Command, args []string) error {
	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return err
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}

	ctx, stop := e.signalContext(cmd.Context())
	defer stop()

	_, err = e.importLocations(ctx, args, !noProgress)
	return err
}

// importLocations loads every location and imports it into the rainbow table.
// A download failure aborts before anything is stored.
func (e *env) importLocations(ctx context.Context, locations []string, showProgress bool) ([]*model.ImportRecord, error) {
	httpClient, cleanup, err := e.downloadClient(ctx, locations)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	e.logger.Info("loading word lists", "count", len(locations), "concurrency", e.cfg.Concurrency)

	sources, err := source.LoadAll(ctx, locations, e.cfg.Concurrency,
		source.WithHTTPClient(httpClient),
		source.WithMaxBodySize(e.cfg.MaxBodySize),
		source.WithEncoding(e.cfg.Encoding),
		source.WithStrictUTF8(e.cfg.StrictUTF8),
	)
	if err != nil {
		return nil, err
	}

	db, err := e.openStore()
	if err != nil {
		return nil, err
	}
	defer e.closeStore(db)

	return e.importSources(ctx, db, sources, showProgress)
}

// importSources runs the ingestion pipeline over sources and prints one line
// per completed import.
func (e *env) importSources(ctx context.Context, db *database.RainbowDB, sources []*source.Source, showProgress bool) ([]*model.ImportRecord, error) {
	pipeline := ingest.New(ingest.FromDatabase(db),
		ingest.WithLogger(e.logger),
		ingest.WithBatchSize(e.cfg.BatchSize),
		ingest.WithContinueOnError(e.cfg.ContinueOnError),
		ingest.WithReporter(progress.New(e.errOut, "Importing", showProgress)),
	)

	records, err := pipeline.ImportAll(ctx, sources, db)
	for _, record := range records {
		if record.Succeeded() {
			fmt.Fprintf(e.out, "Added %s entries to the rainbow table from %s (skipped %s).\n",
				humanize.Comma(int64(record.Accepted)),
				record.Source,
				humanize.Comma(int64(record.Skipped)),
			)
		}
	}
	if ingest.IsCanceled(err) {
		return records, fmt.Errorf("import interrupted: %w", err)
	}
	return records, err
}

// downloadClient returns the HTTP client for the URL locations and a cleanup
// function. No proxy or Tor daemon is set up when every location is a file.
func (e *env) downloadClient(ctx context.Context, locations []string) (*http.Client, func(), error) {
	noop := func() {}
	if !slices.ContainsFunc(locations, source.IsURL) {
		return nil, noop, nil
	}

	if e.cfg.UseTor {
		return e.startEmbeddedTor(ctx)
	}

	client, err := transport.NewClient(e.cfg.ProxyAddress, e.cfg.Timeout, e.cfg.UserAgent)
	if err != nil {
		return nil, noop, err
	}

	if client.UsesProxy() {
		status := client.CheckConnection(ctx)
		if status != transport.ProxyStatusOK {
			return nil, noop, fmt.Errorf("proxy check failed for %s: %w", client.ProxyAddress(), status.Error())
		}
		e.logger.Info("downloading through SOCKS5 proxy", "proxy", client.ProxyAddress())
	}

	return client.NewHTTPClient(), noop, nil
}

// startEmbeddedTor starts an embedded Tor daemon and returns an HTTP client
// routed through it. The cleanup function stops the daemon.
func (e *env) startEmbeddedTor(ctx context.Context) (*http.Client, func(), error) {
	fmt.Fprintln(e.errOut, "Starting embedded Tor daemon...")
	fmt.Fprintf(e.errOut, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embeddedTor := transport.NewEmbeddedTor(
		transport.WithStartupTimeout(e.cfg.TorStartupTimeout),
	)

	if err := embeddedTor.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	stopTor := func() {
		if err := embeddedTor.Stop(); err != nil {
			e.logger.Warn("failed to stop embedded Tor", "error", err)
		}
	}

	e.logger.Info("embedded Tor daemon started", "socks_addr", embeddedTor.SocksAddr())

	client, err := embeddedTor.NewClient(e.cfg.Timeout, e.cfg.UserAgent)
	if err != nil {
		stopTor()
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}

	if status := client.CheckConnection(ctx); status != transport.ProxyStatusOK {
		stopTor()
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %w", status.Error())
	}

	fmt.Fprintf(e.errOut, "Embedded Tor daemon started. SOCKS proxy: %s\n\n", embeddedTor.SocksAddr())

	return client.NewHTTPClient(), stopTor, nil
}
