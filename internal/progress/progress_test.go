package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nao1215/rainbow/internal/ingest"
)

// TestSummary tests the one-line result summary.
func TestSummary(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		result   ingest.Result
		expected string
	}{
		{
			name:     "no failures",
			result:   ingest.Result{Total: 4, Accepted: 2, Skipped: 1, Blank: 1},
			expected: "2 of 4 lines accepted, 1 skipped, 1 blank",
		},
		{
			name:     "large counts are grouped",
			result:   ingest.Result{Total: 1234567, Accepted: 1234567},
			expected: "1,234,567 of 1,234,567 lines accepted, 0 skipped, 0 blank",
		},
		{
			name:     "failures are shown",
			result:   ingest.Result{Total: 3, Accepted: 2, Failed: 1},
			expected: "2 of 3 lines accepted, 0 skipped, 0 blank, 1 failed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Summary(tc.result); got != tc.expected {
				t.Errorf("Summary() = %q, expected %q", got, tc.expected)
			}
		})
	}
}

// TestNew tests reporter selection.
func TestNew(t *testing.T) {
	t.Parallel()

	if _, ok := New(&bytes.Buffer{}, "import", false).(Nop); !ok {
		t.Error("expected Nop when disabled")
	}
	if _, ok := New(&bytes.Buffer{}, "import", true).(*Bar); !ok {
		t.Error("expected *Bar when enabled")
	}
}

// TestBarEmptyRun tests a run with no lines.
func TestBarEmptyRun(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	bar := NewBar(&buf, "import")
	bar.Start(0)
	bar.Update(0, 0)
	bar.Finish(ingest.Result{})

	if !strings.Contains(buf.String(), "0 of 0 lines accepted") {
		t.Errorf("expected summary in output, got %q", buf.String())
	}
}
