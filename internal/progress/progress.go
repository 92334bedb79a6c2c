package progress

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/nao1215/rainbow/internal/ingest"
)

// Nop discards progress.
type Nop struct{}

// Start implements ingest.Reporter.
func (Nop) Start(int) {}

// Update implements ingest.Reporter.
func (Nop) Update(int, int) {}

// Finish implements ingest.Reporter.
func (Nop) Finish(ingest.Result) {}

// Bar shows accepted/total as a pterm progress bar.
type Bar struct {
	output io.Writer
	title  string
	logger *slog.Logger
	bar    *pterm.ProgressbarPrinter
	shown  int
}

// NewBar creates a Bar writing to output. title prefixes the bar.
func NewBar(output io.Writer, title string) *Bar {
	return &Bar{
		output: output,
		title:  title,
		logger: slog.Default(),
	}
}

// New returns a Bar when enabled, otherwise Nop.
func New(output io.Writer, title string, enabled bool) ingest.Reporter {
	if !enabled {
		return Nop{}
	}
	return NewBar(output, title)
}

// Start implements ingest.Reporter.
func (b *Bar) Start(total int) {
	if total == 0 {
		return
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(b.title).
		WithWriter(b.output).
		WithShowCount(true).
		Start()
	if err != nil {
		// The import runs the same without a bar.
		b.logger.Debug("failed to start progress bar", "error", err)
		return
	}
	b.bar = bar
	b.shown = 0
}

// Update implements ingest.Reporter. accepted never decreases during a run.
func (b *Bar) Update(accepted, _ int) {
	if b.bar == nil || accepted <= b.shown {
		return
	}
	b.bar.Add(accepted - b.shown)
	b.shown = accepted
}

// Finish implements ingest.Reporter.
func (b *Bar) Finish(result ingest.Result) {
	if b.bar != nil {
		if _, err := b.bar.Stop(); err != nil {
			b.logger.Debug("failed to stop progress bar", "error", err)
		}
		b.bar = nil
	}
	fmt.Fprintln(b.output, Summary(result))
}

// Summary renders a one-line description of result.
func Summary(result ingest.Result) string {
	s := fmt.Sprintf("%s of %s lines accepted, %s skipped, %s blank",
		humanize.Comma(int64(result.Accepted)),
		humanize.Comma(int64(result.Total)),
		humanize.Comma(int64(result.Skipped)),
		humanize.Comma(int64(result.Blank)),
	)
	if result.Failed > 0 {
		s += fmt.Sprintf(", %s failed", humanize.Comma(int64(result.Failed)))
	}
	return s
}
