package database

import (
	"context"
	"testing"
	"time"

	"github.com/nao1215/rainbow/internal/model"
)

// TestImports tests saving and listing import records.
func TestImports(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns empty list for new database", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t, DefaultOptions())

		records, err := db.ListImports(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list imports: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
	})

	t.Run("save and list newest first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t, DefaultOptions())
		base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		for i, source := range []string{"first.txt", "second.txt", "third.txt"} {
			r := model.NewImportRecord(source, "checksum", 10)
			r.StartedAt = base.Add(time.Duration(i) * time.Minute)
			r.FinishedAt = r.StartedAt.Add(1500 * time.Millisecond)
			r.Accepted = 7
			r.Skipped = 2
			r.Blank = 1
			if source == "second.txt" {
				r.Error = "storage failure"
			}
			if err := db.SaveImport(ctx, r); err != nil {
				t.Fatalf("failed to save import: %v", err)
			}
		}

		records, err := db.ListImports(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list imports: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}

		wantOrder := []string{"third.txt", "second.txt", "first.txt"}
		for i, want := range wantOrder {
			if records[i].Source != want {
				t.Errorf("record %d source = %q, want %q", i, records[i].Source, want)
			}
		}

		first := records[2]
		if !first.StartedAt.Equal(base) {
			t.Errorf("expected StartedAt %v, got %v", base, first.StartedAt)
		}
		if first.Duration() != 1500*time.Millisecond {
			t.Errorf("expected duration 1.5s, got %v", first.Duration())
		}
		if first.Accepted != 7 || first.Skipped != 2 || first.Blank != 1 || first.TotalLines != 10 {
			t.Errorf("unexpected counters: %+v", first)
		}
		if records[1].Succeeded() {
			t.Error("expected second record to carry its error")
		}
	})

	t.Run("limit restricts the number of records", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t, DefaultOptions())

		for range 5 {
			if err := db.SaveImport(ctx, model.NewImportRecord("words.txt", "c", 1)); err != nil {
				t.Fatalf("failed to save import: %v", err)
			}
		}

		records, err := db.ListImports(ctx, 2)
		if err != nil {
			t.Fatalf("failed to list imports: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("expected 2 records, got %d", len(records))
		}
	})
}

// TestParseTimestamp tests timestamp parsing fallbacks.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

	for _, s := range []string{
		formatTimestamp(want),
		"2026-05-06T07:08:09Z",
		"2026-05-06 07:08:09",
	} {
		if got := parseTimestamp(s); !got.Equal(want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", s, got, want)
		}
	}

	if got := parseTimestamp("not a time"); !got.IsZero() {
		t.Errorf("expected zero time for garbage, got %v", got)
	}
}
