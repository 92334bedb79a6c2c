package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/rainbow/internal/model"
)

const (
	helloMD5    = "5d41402abc4b2a76b9719d911017c592"
	helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
)

// createTestEntry returns the entry for "hello".
func createTestEntry(t *testing.T) *model.Entry {
	t.Helper()

	entry, err := model.NewEntry("hello")
	if err != nil {
		t.Fatalf("failed to build entry: %v", err)
	}
	return entry
}

// createTestRecords returns one successful and one failed import.
func createTestRecords() []model.ImportRecord {
	started := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return []model.ImportRecord{
		{
			ID:         "11111111-1111-1111-1111-111111111111",
			Source:     "https://example.com/words.txt",
			Checksum:   "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a",
			TotalLines: 12345,
			Accepted:   12000,
			Skipped:    300,
			Blank:      45,
			StartedAt:  started,
			FinishedAt: started.Add(1500 * time.Millisecond),
		},
		{
			ID:         "22222222-2222-2222-2222-222222222222",
			Source:     "broken.txt",
			TotalLines: 3,
			Accepted:   1,
			StartedAt:  started.Add(-time.Hour),
			FinishedAt: started.Add(-time.Hour),
			Error:      "line 2: plaintext is not valid UTF-8",
		},
	}
}

// TestParseFormat tests output format parsing.
func TestParseFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"Markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{"xml", "", true},
	}

	for _, tc := range testCases {
		got, err := ParseFormat(tc.input)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("ParseFormat(%q) error = %v, expected ErrUnknownFormat", tc.input, err)
			}
			continue
		}
		if err != nil || got != tc.expected {
			t.Errorf("ParseFormat(%q) = %q, %v, expected %q", tc.input, got, err, tc.expected)
		}
	}
}

// TestNew tests writer selection.
func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if w, err := New(FormatText, &buf); err != nil {
		t.Errorf("unexpected error: %v", err)
	} else if _, ok := w.(*SimpleWriter); !ok {
		t.Errorf("expected *SimpleWriter, got %T", w)
	}
	if w, err := New(FormatMarkdown, &buf); err != nil {
		t.Errorf("unexpected error: %v", err)
	} else if _, ok := w.(*MarkdownWriter); !ok {
		t.Errorf("expected *MarkdownWriter, got %T", w)
	}
	if w, err := New(FormatJSON, &buf); err != nil {
		t.Errorf("unexpected error: %v", err)
	} else if _, ok := w.(*JSONWriter); !ok {
		t.Errorf("expected *JSONWriter, got %T", w)
	}
	if _, err := New(Format("yaml"), &buf); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

// TestSimpleWriter tests the plain text writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes found entry", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := NewLookupResult(helloMD5, model.FieldHash, createTestEntry(t))

		if _, err := NewSimpleWriter(&buf).WriteLookup(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"Plaintext: hello", "MD5: " + helloMD5, "SHA256: " + helloSHA256} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("writes miss with digest hint", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := NewLookupResult(strings.Repeat("0", 32), model.FieldAny, nil)

		if _, err := NewSimpleWriter(&buf).WriteLookup(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No entry found") {
			t.Errorf("expected miss message, got %q", output)
		}
		if !strings.Contains(output, "MD5") {
			t.Errorf("expected MD5 hint, got %q", output)
		}
	})

	t.Run("plaintext miss has no hint", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := NewLookupResult(strings.Repeat("0", 32), model.FieldPlaintext, nil)

		if _, err := NewSimpleWriter(&buf).WriteLookup(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "digest") {
			t.Errorf("expected no digest hint, got %q", buf.String())
		}
	})

	t.Run("writes imports", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteImports(createTestRecords()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"https://example.com/words.txt",
			"12,345",
			"accepted 12,000",
			"1.5s",
			"Status:   complete",
			"failed - line 2",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("writes empty history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteImports(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "No imports recorded.\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes entry table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := NewLookupResult("hello", model.FieldPlaintext, createTestEntry(t))

		if _, err := NewMarkdownWriter(&buf).WriteLookup(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"# Lookup", "| Field", "`" + helloMD5 + "`", "SHA512"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("writes miss note", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := NewLookupResult("nothing", model.FieldAny, nil)

		if _, err := NewMarkdownWriter(&buf).WriteLookup(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No entry found.") {
			t.Errorf("expected miss note, got:\n%s", buf.String())
		}
	})

	t.Run("writes history table with warning", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteImports(createTestRecords()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"# Import History", "| Started", "a7ffc6f8bf1e", "12,000", "[!WARNING]"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("writes entry", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteEntry(createTestEntry(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "# Entry") {
			t.Errorf("expected entry heading, got:\n%s", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes lookup result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := NewLookupResult(helloSHA256, model.FieldHash, createTestEntry(t))

		if _, err := NewJSONWriter(&buf).WriteLookup(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Query      string       `json:"query"`
			Field      string       `json:"field"`
			Entry      *model.Entry `json:"entry"`
			Candidates []string     `json:"candidates"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Field != "hash" || decoded.Entry == nil || decoded.Entry.Plaintext != "hello" {
			t.Errorf("unexpected decoded result: %+v", decoded)
		}
		if len(decoded.Candidates) != 1 || decoded.Candidates[0] != "sha256" {
			t.Errorf("expected sha256 candidate, got %v", decoded.Candidates)
		}
	})

	t.Run("miss writes null entry", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteLookup(NewLookupResult("x", model.FieldAny, nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"entry":null`) {
			t.Errorf("expected null entry, got %s", buf.String())
		}
	})

	t.Run("empty history is an empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteImports(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("expected [], got %s", buf.String())
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).WriteEntry(createTestEntry(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"plaintext\": \"hello\"") {
			t.Errorf("expected indented output, got %s", buf.String())
		}
	})
}

// failingWriter fails every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, md bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&text), NewMarkdownWriter(&md))

		n, err := mw.WriteImports(createTestRecords())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 || text.Len() == 0 || md.Len() == 0 {
			t.Error("expected output in both writers")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(failingWriter{}), NewSimpleWriter(&buf))

		if _, err := mw.WriteEntry(createTestEntry(t)); err == nil {
			t.Fatal("expected error")
		}
		if buf.Len() != 0 {
			t.Error("expected second writer to be skipped")
		}
	})
}

// TestShortChecksum tests checksum shortening.
func TestShortChecksum(t *testing.T) {
	t.Parallel()

	if got := shortChecksum("abc"); got != "abc" {
		t.Errorf("shortChecksum(abc) = %q", got)
	}
	if got := shortChecksum(strings.Repeat("f", 64)); got != strings.Repeat("f", 12) {
		t.Errorf("shortChecksum(64 chars) = %q", got)
	}
}
