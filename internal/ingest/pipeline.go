package ingest

import (
	"context"
	"log/slog"

	"github.com/nao1215/rainbow/internal/database"
	"github.com/nao1215/rainbow/internal/model"
)

// Inserter stores an entry unless its plaintext already exists.
// It reports whether the entry was inserted.
type Inserter interface {
	Insert(ctx context.Context, entry *model.Entry) (bool, error)
}

// Tx is an open store transaction.
type Tx interface {
	Inserter

	// Commit makes the transaction's inserts durable.
	Commit() error

	// Rollback discards the transaction. It must be safe after Commit.
	Rollback() error
}

// Store is what the pipeline writes to.
type Store interface {
	Inserter

	// Begin opens a transaction used for batched ingestion.
	Begin(ctx context.Context) (Tx, error)
}

// databaseStore adapts *database.RainbowDB to Store.
type databaseStore struct {
	*database.RainbowDB
}

// Begin implements Store.
func (s databaseStore) Begin(ctx context.Context) (Tx, error) {
	batch, err := s.RainbowDB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// FromDatabase returns a Store writing to db.
func FromDatabase(db *database.RainbowDB) Store {
	return databaseStore{RainbowDB: db}
}

// Reporter receives progress of an ingestion run.
type Reporter interface {
	// Start is called once before the first line.
	Start(total int)

	// Update is called after every line with the number of lines accepted so far.
	Update(accepted, total int)

	// Finish is called once when the run ends, successfully or not.
	Finish(result Result)
}

// nopReporter discards progress.
type nopReporter struct{}

func (nopReporter) Start(int)       {}
func (nopReporter) Update(int, int) {}
func (nopReporter) Finish(Result)   {}

// Result counts what happened to the lines of a run.
type Result struct {
	// Total is the number of input lines, blank lines included.
	Total int `json:"total"`

	// Accepted is the number of lines stored as new entries.
	Accepted int `json:"accepted"`

	// Skipped is the number of lines whose plaintext was already stored.
	Skipped int `json:"skipped"`

	// Blank is the number of empty lines.
	Blank int `json:"blank"`

	// Failed is the number of lines dropped under WithContinueOnError.
	Failed int `json:"failed"`
}

// Processed returns how many lines have been accounted for.
func (r Result) Processed() int {
	return r.Accepted + r.Skipped + r.Blank + r.Failed
}

// add folds the counts of other into r. Total is left untouched.
func (r *Result) add(other Result) {
	r.Accepted += other.Accepted
	r.Skipped += other.Skipped
	r.Blank += other.Blank
	r.Failed += other.Failed
}

// Pipeline ingests lines into a Store.
type Pipeline struct {
	store           Store
	logger          *slog.Logger
	reporter        Reporter
	batchSize       int
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithReporter sets where progress is reported. If not set, progress is discarded.
func WithReporter(reporter Reporter) Option {
	return func(p *Pipeline) {
		p.reporter = reporter
	}
}

// WithBatchSize groups inserts into transactions of n lines.
// A value of one or less inserts every line on its own.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		p.batchSize = n
	}
}

// WithContinueOnError makes lines that cannot become entries count as
// Failed instead of aborting the run. Storage failures always abort.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a Pipeline writing to store.
func New(store Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     store,
		batchSize: 1,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.reporter == nil {
		p.reporter = nopReporter{}
	}

	return p
}

// Ingest stores lines in order and returns what happened to them.
//
// On error the Result still describes the lines that reached the store.
// Context cancellation is checked between lines.
func (p *Pipeline) Ingest(ctx context.Context, lines []string) (Result, error) {
	result := Result{Total: len(lines)}

	p.reporter.Start(result.Total)
	defer func() {
		p.reporter.Finish(result)
	}()

	var err error
	if p.batchSize <= 1 {
		err = p.ingestEach(ctx, lines, &result)
	} else {
		err = p.ingestBatches(ctx, lines, &result)
	}

	if err != nil {
		p.logger.Error("ingestion stopped",
			"processed", result.Processed(),
			"total", result.Total,
			"error", err,
		)
		return result, err
	}

	p.logger.Info("ingestion complete",
		"total", result.Total,
		"accepted", result.Accepted,
		"skipped", result.Skipped,
		"blank", result.Blank,
		"failed", result.Failed,
	)
	return result, nil
}

// ingestEach inserts every line through the store directly.
func (p *Pipeline) ingestEach(ctx context.Context, lines []string, result *Result) error {
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.ingestLine(ctx, p.store, i+1, line, result); err != nil {
			return err
		}
		p.reporter.Update(result.Accepted, result.Total)
	}
	return nil
}

// ingestBatches splits lines into transactions of p.batchSize lines.
func (p *Pipeline) ingestBatches(ctx context.Context, lines []string, result *Result) error {
	for start := 0; start < len(lines); start += p.batchSize {
		end := min(start+p.batchSize, len(lines))
		if err := p.ingestBatch(ctx, lines[start:end], start, result); err != nil {
			return err
		}
	}
	return nil
}

// ingestBatch stores chunk in one transaction. offset is the index of the
// chunk's first line in the whole input.
func (p *Pipeline) ingestBatch(ctx context.Context, chunk []string, offset int, result *Result) (err error) {
	tx, err := p.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			p.logger.Warn("failed to roll back batch", "error", rbErr)
		}
	}()

	var pending Result
	for i, line := range chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.ingestLine(ctx, tx, offset+i+1, line, &pending); err != nil {
			return err
		}
		p.reporter.Update(result.Accepted+pending.Accepted, result.Total)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	result.add(pending)

	p.logger.Debug("batch committed",
		"first_line", offset+1,
		"lines", len(chunk),
		"accepted", pending.Accepted,
	)
	return nil
}

// ingestLine handles a single line. number is 1-based.
func (p *Pipeline) ingestLine(ctx context.Context, ins Inserter, number int, line string, counts *Result) error {
	if line == "" {
		counts.Blank++
		return nil
	}

	entry, err := model.NewEntry(line)
	if err != nil {
		if !p.continueOnError {
			return &LineError{Number: number, Err: err}
		}
		p.logger.Warn("skipping line", "line_number", number, "error", err)
		counts.Failed++
		return nil
	}

	inserted, err := ins.Insert(ctx, entry)
	if err != nil {
		return err
	}
	if inserted {
		counts.Accepted++
	} else {
		counts.Skipped++
	}
	return nil
}
