package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/rainbow/internal/digest"
	"github.com/nao1215/rainbow/internal/model"
)

// ErrUnknownFormat is returned by ParseFormat for an unsupported name.
var ErrUnknownFormat = errors.New("unknown output format")

// Format names an output format.
type Format string

const (
	// FormatText is plain text.
	FormatText Format = "text"

	// FormatMarkdown is GitHub-flavored Markdown.
	FormatMarkdown Format = "markdown"

	// FormatJSON is indented JSON.
	FormatJSON Format = "json"
)

// ParseFormat parses a format name. An empty name means FormatText.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// LookupResult is the outcome of one lookup.
type LookupResult struct {
	// Query is the value that was looked up.
	Query string `json:"query"`

	// Field is the column set searched.
	Field model.Field `json:"-"`

	// FieldName is Field as text, for JSON output.
	FieldName string `json:"field"`

	// Entry is the first matching row, nil when nothing matched.
	Entry *model.Entry `json:"entry"`

	// Candidates are the algorithms whose digest length fits Query.
	Candidates []digest.Algorithm `json:"candidates,omitempty"`
}

// NewLookupResult describes a lookup of query over field.
func NewLookupResult(query string, field model.Field, entry *model.Entry) *LookupResult {
	return &LookupResult{
		Query:      query,
		Field:      field,
		FieldName:  field.String(),
		Entry:      entry,
		Candidates: digest.Identify(query),
	}
}

// Found reports whether the lookup matched a row.
func (r *LookupResult) Found() bool {
	return r.Entry != nil
}

// Writer renders results in one format.
type Writer interface {
	// WriteLookup outputs the result of a lookup, found or not.
	WriteLookup(result *LookupResult) (int, error)

	// WriteEntry outputs a single entry.
	WriteEntry(entry *model.Entry) (int, error)

	// WriteImports outputs import records, newest first.
	WriteImports(records []model.ImportRecord) (int, error)
}

// New returns the Writer for format.
func New(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewSimpleWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes to multiple Writers, for example the terminal and a file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteLookup implements Writer. It stops on the first error.
func (m *MultiWriter) WriteLookup(result *LookupResult) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteLookup(result) })
}

// WriteEntry implements Writer. It stops on the first error.
func (m *MultiWriter) WriteEntry(entry *model.Entry) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteEntry(entry) })
}

// WriteImports implements Writer. It stops on the first error.
func (m *MultiWriter) WriteImports(records []model.ImportRecord) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteImports(records) })
}

func (m *MultiWriter) each(write func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := write(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeLayout is used for timestamps in text and Markdown output.
const timeLayout = "2006-01-02 15:04:05 MST"

// shortChecksum shortens a fingerprint for tables.
func shortChecksum(s string) string {
	if len(s) <= 12 {
		return s
	}
	return s[:12]
}

// candidateNames joins the display names of algs.
func candidateNames(algs []digest.Algorithm) string {
	names := make([]string, len(algs))
	for i, alg := range algs {
		names[i] = alg.DisplayName()
	}
	return strings.Join(names, " or ")
}
