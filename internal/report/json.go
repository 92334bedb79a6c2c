package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/rainbow/internal/model"
)

// JSONWriter outputs JSON for scripts.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteLookup implements Writer. A miss is written with "entry": null.
func (w *JSONWriter) WriteLookup(result *LookupResult) (int, error) {
	return w.writeJSON(result)
}

// WriteEntry implements Writer.
func (w *JSONWriter) WriteEntry(entry *model.Entry) (int, error) {
	return w.writeJSON(entry)
}

// WriteImports implements Writer. No records are written as [] rather than null.
func (w *JSONWriter) WriteImports(records []model.ImportRecord) (int, error) {
	if records == nil {
		records = []model.ImportRecord{}
	}
	return w.writeJSON(records)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}
