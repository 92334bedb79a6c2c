package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/nao1215/rainbow/internal/database"
	"github.com/nao1215/rainbow/internal/model"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory Store with injectable failures.
type memStore struct {
	mu         sync.Mutex
	rows       map[string]*model.Entry
	inserts    int
	failAfter  int // fail every insert after this many; 0 disables
	failBegin  bool
	failCommit bool
	rollbacks  int
	commits    int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]*model.Entry)}
}

func (s *memStore) insert(rows map[string]*model.Entry, entry *model.Entry) (bool, error) {
	if s.failAfter > 0 && s.inserts >= s.failAfter {
		return false, errStoreDown
	}
	s.inserts++
	if _, ok := s.rows[entry.Plaintext]; ok {
		return false, nil
	}
	if _, ok := rows[entry.Plaintext]; ok {
		return false, nil
	}
	rows[entry.Plaintext] = entry
	return true, nil
}

// Insert implements Store.
func (s *memStore) Insert(_ context.Context, entry *model.Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(s.rows, entry)
}

// Begin implements Store.
func (s *memStore) Begin(_ context.Context) (Tx, error) {
	if s.failBegin {
		return nil, errStoreDown
	}
	return &memTx{store: s, pending: make(map[string]*model.Entry)}, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// memTx buffers inserts until Commit.
type memTx struct {
	store   *memStore
	pending map[string]*model.Entry
	done    bool
}

func (tx *memTx) Insert(_ context.Context, entry *model.Entry) (bool, error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	return tx.store.insert(tx.pending, entry)
}

func (tx *memTx) Commit() error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	if tx.store.failCommit {
		return errStoreDown
	}
	for k, v := range tx.pending {
		tx.store.rows[k] = v
	}
	tx.done = true
	tx.store.commits++
	return nil
}

func (tx *memTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.store.mu.Lock()
	tx.store.rollbacks++
	tx.store.mu.Unlock()
	return nil
}

// recordingReporter remembers the calls it receives.
type recordingReporter struct {
	started  int
	updates  []int
	finished *Result
}

func (r *recordingReporter) Start(total int) { r.started = total }

func (r *recordingReporter) Update(accepted, _ int) { r.updates = append(r.updates, accepted) }

func (r *recordingReporter) Finish(result Result) { r.finished = &result }

// discardLogger returns a logger that writes nowhere.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestIngestAccounting tests the counts reported for a run.
func TestIngestAccounting(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		batchSize int
	}{
		{"unbatched", 1},
		{"batch of two", 2},
		{"batch larger than input", 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newMemStore()
			reporter := &recordingReporter{}
			p := New(store,
				WithBatchSize(tc.batchSize),
				WithReporter(reporter),
				WithLogger(discardLogger()),
			)

			result, err := p.Ingest(context.Background(), []string{"a", "", "a", "b"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			expected := Result{Total: 4, Accepted: 2, Skipped: 1, Blank: 1}
			if result != expected {
				t.Errorf("Ingest() = %+v, expected %+v", result, expected)
			}
			if store.count() != 2 {
				t.Errorf("expected 2 stored entries, got %d", store.count())
			}

			if reporter.started != 4 {
				t.Errorf("Start(%d), expected Start(4)", reporter.started)
			}
			if len(reporter.updates) != 4 {
				t.Errorf("expected 4 updates, got %d", len(reporter.updates))
			}
			if reporter.finished == nil || *reporter.finished != expected {
				t.Errorf("Finish(%+v), expected Finish(%+v)", reporter.finished, expected)
			}
		})
	}
}

// TestIngestEmpty tests a run over no lines.
func TestIngestEmpty(t *testing.T) {
	t.Parallel()

	result, err := New(newMemStore(), WithLogger(discardLogger())).Ingest(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != (Result{}) {
		t.Errorf("expected empty result, got %+v", result)
	}
}

// TestIngestWhitespaceIsNotBlank tests that only zero-length lines are blank.
func TestIngestWhitespaceIsNotBlank(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	result, err := New(store, WithLogger(discardLogger())).Ingest(context.Background(), []string{" ", "\t", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Accepted != 2 || result.Blank != 1 {
		t.Errorf("expected 2 accepted and 1 blank, got %+v", result)
	}
}

// TestIngestBadLine tests lines that cannot become entries.
func TestIngestBadLine(t *testing.T) {
	t.Parallel()

	lines := []string{"a", "\xff\xfe", "b"}

	t.Run("aborts by default", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		result, err := New(store, WithLogger(discardLogger())).Ingest(context.Background(), lines)
		if !errors.Is(err, ErrBadLine) {
			t.Fatalf("expected ErrBadLine, got %v", err)
		}
		if !errors.Is(err, model.ErrInvalidPlaintext) {
			t.Errorf("expected ErrInvalidPlaintext in chain, got %v", err)
		}

		var lineErr *LineError
		if !errors.As(err, &lineErr) || lineErr.Number != 2 {
			t.Errorf("expected error for line 2, got %v", err)
		}
		if result.Accepted != 1 {
			t.Errorf("expected 1 accepted before the bad line, got %d", result.Accepted)
		}
	})

	t.Run("counted as failed with continue on error", func(t *testing.T) {
		t.Parallel()

		for _, batchSize := range []int{1, 2} {
			store := newMemStore()
			p := New(store,
				WithContinueOnError(true),
				WithBatchSize(batchSize),
				WithLogger(discardLogger()),
			)

			result, err := p.Ingest(context.Background(), lines)
			if err != nil {
				t.Fatalf("batch size %d: unexpected error: %v", batchSize, err)
			}
			expected := Result{Total: 3, Accepted: 2, Failed: 1}
			if result != expected {
				t.Errorf("batch size %d: Ingest() = %+v, expected %+v", batchSize, result, expected)
			}
		}
	})
}

// TestIngestStorageFailure tests that storage failures abort the run.
func TestIngestStorageFailure(t *testing.T) {
	t.Parallel()

	t.Run("unbatched keeps earlier lines", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		store.failAfter = 2
		reporter := &recordingReporter{}

		result, err := New(store,
			WithContinueOnError(true),
			WithReporter(reporter),
			WithLogger(discardLogger()),
		).Ingest(context.Background(), []string{"a", "b", "c", "d"})
		if !errors.Is(err, errStoreDown) {
			t.Fatalf("expected errStoreDown, got %v", err)
		}
		if result.Accepted != 2 || store.count() != 2 {
			t.Errorf("expected 2 accepted and stored, got %+v and %d rows", result, store.count())
		}
		if reporter.finished == nil {
			t.Error("expected Finish to be called on failure")
		}
	})

	t.Run("failed batch is rolled back and not counted", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		store.failAfter = 3

		result, err := New(store,
			WithBatchSize(2),
			WithLogger(discardLogger()),
		).Ingest(context.Background(), []string{"a", "b", "c", "d", "e"})
		if !errors.Is(err, errStoreDown) {
			t.Fatalf("expected errStoreDown, got %v", err)
		}

		// The first batch committed; the second failed on "d".
		expected := Result{Total: 5, Accepted: 2}
		if result != expected {
			t.Errorf("Ingest() = %+v, expected %+v", result, expected)
		}
		if store.count() != 2 {
			t.Errorf("expected 2 stored entries, got %d", store.count())
		}
		if store.rollbacks != 1 {
			t.Errorf("expected 1 rollback, got %d", store.rollbacks)
		}
	})

	t.Run("commit failure never inflates accepted", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		store.failCommit = true

		result, err := New(store,
			WithBatchSize(10),
			WithLogger(discardLogger()),
		).Ingest(context.Background(), []string{"a", "b"})
		if !errors.Is(err, errStoreDown) {
			t.Fatalf("expected errStoreDown, got %v", err)
		}
		if result.Accepted != 0 {
			t.Errorf("expected 0 accepted, got %d", result.Accepted)
		}
		if store.count() != 0 {
			t.Errorf("expected no stored entries, got %d", store.count())
		}
	})

	t.Run("begin failure", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		store.failBegin = true

		_, err := New(store, WithBatchSize(2), WithLogger(discardLogger())).
			Ingest(context.Background(), []string{"a"})
		if !errors.Is(err, errStoreDown) {
			t.Errorf("expected errStoreDown, got %v", err)
		}
	})
}

// TestIngestCanceled tests context cancellation between lines.
func TestIngestCanceled(t *testing.T) {
	t.Parallel()

	for _, batchSize := range []int{1, 5} {
		store := newMemStore()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := New(store, WithBatchSize(batchSize), WithLogger(discardLogger())).
			Ingest(ctx, []string{"a", "b"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("batch size %d: expected context.Canceled, got %v", batchSize, err)
		}
		if !IsCanceled(err) {
			t.Errorf("batch size %d: IsCanceled(%v) = false", batchSize, err)
		}
		if result.Accepted != 0 || store.count() != 0 {
			t.Errorf("batch size %d: expected nothing stored, got %+v", batchSize, result)
		}
	}
}

// TestIngestDatabase runs the pipeline against a real database.
func TestIngestDatabase(t *testing.T) {
	t.Parallel()

	for _, batchSize := range []int{1, 3} {
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() {
			_ = db.Close()
		})

		p := New(FromDatabase(db), WithBatchSize(batchSize), WithLogger(discardLogger()))
		result, err := p.Ingest(context.Background(), []string{"a", "", "a", "b"})
		if err != nil {
			t.Fatalf("batch size %d: unexpected error: %v", batchSize, err)
		}
		if result.Accepted != 2 || result.Skipped != 1 || result.Blank != 1 {
			t.Errorf("batch size %d: unexpected result %+v", batchSize, result)
		}

		count, err := db.Count(context.Background())
		if err != nil {
			t.Fatalf("batch size %d: failed to count: %v", batchSize, err)
		}
		if count != 2 {
			t.Errorf("batch size %d: expected count 2, got %d", batchSize, count)
		}

		// Running the same list again stores nothing new.
		result, err = p.Ingest(context.Background(), []string{"a", "b"})
		if err != nil {
			t.Fatalf("batch size %d: unexpected error: %v", batchSize, err)
		}
		if result.Accepted != 0 || result.Skipped != 2 {
			t.Errorf("batch size %d: expected all skipped, got %+v", batchSize, result)
		}
	}
}

// TestResultProcessed tests the processed line count.
func TestResultProcessed(t *testing.T) {
	t.Parallel()

	r := Result{Total: 10, Accepted: 1, Skipped: 2, Blank: 3, Failed: 4}
	if r.Processed() != 10 {
		t.Errorf("Processed() = %d, expected 10", r.Processed())
	}
}
