package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"

	"github.com/nao1215/rainbow/internal/digest"
	"github.com/nao1215/rainbow/internal/model"
)

// MarkdownWriter outputs GitHub-flavored Markdown built with nao1215/markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteLookup implements Writer.
func (w *MarkdownWriter) WriteLookup(result *LookupResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Lookup")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Query", "`" + result.Query + "`"},
			{"Searched", result.Field.String()},
		},
	})
	md.PlainText("")

	if result.Found() {
		w.writeEntryTable(md, result.Entry)
	} else {
		md.Note("No entry found.")
		if len(result.Candidates) > 0 && result.Field != model.FieldPlaintext {
			md.PlainText("")
			md.PlainTextf("The value has the length of a %s digest.", candidateNames(result.Candidates))
		}
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

// WriteEntry implements Writer.
func (w *MarkdownWriter) WriteEntry(entry *model.Entry) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Entry")
	md.PlainText("")
	w.writeEntryTable(md, entry)
	return len(md.String()), md.Build()
}

// writeEntryTable writes the plaintext and its digests as a table.
func (w *MarkdownWriter) writeEntryTable(md *markdown.Markdown, entry *model.Entry) {
	rows := [][]string{{"Plaintext", "`" + entry.Plaintext + "`"}}
	for _, alg := range digest.Algorithms() {
		rows = append(rows, []string{alg.DisplayName(), "`" + entry.Digest(alg) + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteImports implements Writer.
func (w *MarkdownWriter) WriteImports(records []model.ImportRecord) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Import History")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No imports recorded.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(records))
	failed := 0
	var accepted int64
	for i := range records {
		r := &records[i]
		status := "✅ Complete"
		if !r.Succeeded() {
			status = "❌ " + r.Error
			failed++
		}
		accepted += int64(r.Accepted)

		rows[i] = []string{
			r.StartedAt.Local().Format(timeLayout),
			r.Source,
			"`" + shortChecksum(r.Checksum) + "`",
			humanize.Comma(int64(r.TotalLines)),
			humanize.Comma(int64(r.Accepted)),
			humanize.Comma(int64(r.Skipped)),
			humanize.Comma(int64(r.Blank)),
			humanize.Comma(int64(r.Failed)),
			r.Duration().Round(time.Millisecond).String(),
			status,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Started", "Source", "SHA3-256", "Lines", "Accepted", "Skipped", "Blank", "Failed", "Duration", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	if failed > 0 {
		md.Warningf("%d of %d imports did not complete.", failed, len(records))
	} else {
		md.Tip(fmt.Sprintf("%s entries added by %d imports.", humanize.Comma(accepted), len(records)))
	}
	md.PlainText("")

	return len(md.String()), md.Build()
}
