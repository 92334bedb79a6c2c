package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nao1215/rainbow/internal/model"
)

// SimpleWriter outputs plain text for the terminal. Entries use the
// five-line "Label: value" layout of model.Entry.String.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// WriteLookup implements Writer.
func (w *SimpleWriter) WriteLookup(result *LookupResult) (int, error) {
	if result.Found() {
		return w.WriteEntry(result.Entry)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "No entry found for %q\n", result.Query)
	if len(result.Candidates) > 0 && result.Field != model.FieldPlaintext {
		fmt.Fprintf(&sb, "The value has the length of a %s digest.\n", candidateNames(result.Candidates))
	}
	return io.WriteString(w.output, sb.String())
}

// WriteEntry implements Writer.
func (w *SimpleWriter) WriteEntry(entry *model.Entry) (int, error) {
	return io.WriteString(w.output, entry.String()+"\n")
}

// WriteImports implements Writer.
func (w *SimpleWriter) WriteImports(records []model.ImportRecord) (int, error) {
	if len(records) == 0 {
		return io.WriteString(w.output, "No imports recorded.\n")
	}

	var sb strings.Builder
	for i := range records {
		if i > 0 {
			sb.WriteString("\n")
		}
		w.writeImport(&sb, &records[i])
	}
	return io.WriteString(w.output, sb.String())
}

// writeImport writes one import record.
func (w *SimpleWriter) writeImport(sb *strings.Builder, r *model.ImportRecord) {
	fmt.Fprintf(sb, "%s  %s\n", r.StartedAt.Local().Format(timeLayout), r.Source)
	fmt.Fprintf(sb, "  ID:       %s\n", r.ID)
	if r.Checksum != "" {
		fmt.Fprintf(sb, "  SHA3-256: %s\n", r.Checksum)
	}
	fmt.Fprintf(sb, "  Lines:    %s (accepted %s, skipped %s, blank %s, failed %s)\n",
		humanize.Comma(int64(r.TotalLines)),
		humanize.Comma(int64(r.Accepted)),
		humanize.Comma(int64(r.Skipped)),
		humanize.Comma(int64(r.Blank)),
		humanize.Comma(int64(r.Failed)),
	)
	fmt.Fprintf(sb, "  Duration: %s\n", r.Duration().Round(time.Millisecond))
	if r.Succeeded() {
		sb.WriteString("  Status:   complete\n")
	} else {
		fmt.Fprintf(sb, "  Status:   failed - %s\n", r.Error)
	}
}
