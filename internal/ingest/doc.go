// Package ingest turns word lists into stored entries.
//
// A Pipeline walks the lines of a list strictly in order. Empty lines are
// counted and skipped, every other line becomes a model.Entry and is handed
// to the Store with insert-if-absent semantics. Lines that already exist are
// counted as skipped, never as errors.
//
// With a batch size above one, lines are written through store transactions
// of that many lines. Counts of a transaction reach the Result only after
// its commit succeeds, so a failed run never reports more accepted lines
// than the store holds.
//
// Import wraps a Pipeline run over a loaded source.Source and records the
// outcome in the imports table.
package ingest
