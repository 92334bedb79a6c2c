package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/rainbow/internal/model"
)

// FileName is the name of the SQLite file inside the data directory.
const FileName = "rainbow.db"

// MatchMode controls how lookup values are compared with stored columns.
type MatchMode int

const (
	// MatchExact compares with "=". Hash values are lowercased first because
	// digests are stored as lowercase hex.
	MatchExact MatchMode = iota

	// MatchPattern compares with a case-sensitive LIKE, so "%" and "_" in the
	// lookup value act as wildcards.
	MatchPattern
)

// String returns the configuration spelling of the mode.
func (m MatchMode) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// ParseMatchMode converts a configuration value into a MatchMode.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return MatchExact, nil
	case "pattern", "like":
		return MatchPattern, nil
	default:
		return MatchExact, fmt.Errorf("unknown match mode %q (want exact or pattern)", s)
	}
}

// RainbowDB provides SQLite-based storage for rainbow table entries.
//
// All methods are synchronous. The connection pool is limited to a single
// connection, so statements never run concurrently against the file.
type RainbowDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// matchMode selects "=" or LIKE for lookups.
	matchMode MatchMode

	// lock is the writer lock, nil when Options.Lock is false.
	lock *writerLock
}

// Options configures RainbowDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool

	// MatchMode selects exact or pattern lookups.
	MatchMode MatchMode

	// Lock takes an exclusive cross-process lock for the lifetime of the handle.
	Lock bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		MatchMode:         MatchExact,
		Lock:              true,
	}
}

// Open opens or creates a RainbowDB in dbDir and makes sure the schema exists.
// If CreateIfNotExists is false and the database doesn't exist, an error
// wrapping ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*RainbowDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s (use CreateIfNotExists option to create)", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	var lock *writerLock
	if opts.Lock {
		lock = newWriterLock(dbDir)
		if err := lock.tryLock(); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", buildDSN(dbPath, opts))
	if err != nil {
		_ = unlock(lock) //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer, and the pipeline depends on seeing
	// its own earlier inserts, so everything goes through one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RainbowDB{
		db:        db,
		dbPath:    dbPath,
		matchMode: opts.MatchMode,
		lock:      lock,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = rdb.Close() //nolint:errcheck // Best effort cleanup
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.EnsureSchema(context.Background()); err != nil {
		_ = rdb.Close() //nolint:errcheck // Best effort cleanup
		return nil, err
	}

	return rdb, nil
}

// buildDSN builds the modernc.org/sqlite connection string.
// mode=rw prevents creating a new file when CreateIfNotExists is false.
// case_sensitive_like is a per-connection pragma, so it goes into the DSN
// where the driver applies it to every connection it opens.
func buildDSN(dbPath string, opts Options) string {
	params := []string{"mode=rw"}
	if opts.CreateIfNotExists {
		params[0] = "mode=rwc"
	}
	if opts.MatchMode == MatchPattern {
		params = append(params, "_pragma=case_sensitive_like(1)")
	}
	return dbPath + "?" + strings.Join(params, "&")
}

// unlock releases lock if it is non-nil.
func unlock(lock *writerLock) error {
	if lock == nil {
		return nil
	}
	return lock.unlock()
}

// Close closes the database connection and releases the writer lock.
func (rdb *RainbowDB) Close() error {
	err := rdb.db.Close()
	if unlockErr := unlock(rdb.lock); err == nil {
		err = unlockErr
	}
	return err
}

// Path returns the path of the SQLite file.
func (rdb *RainbowDB) Path() string {
	return rdb.dbPath
}

// MatchMode returns the lookup mode the store was opened with.
func (rdb *RainbowDB) MatchMode() MatchMode {
	return rdb.matchMode
}

// schema is applied on every open. Every statement is IF NOT EXISTS, so
// running it against an existing store never drops or truncates data.
const schema = `
	-- One row per plaintext; digests are computed once at insert time
	CREATE TABLE IF NOT EXISTS rainbow (
		plaintext TEXT PRIMARY KEY,
		md5 TEXT NOT NULL,
		sha1 TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		sha512 TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rainbow_md5 ON rainbow(md5);
	CREATE INDEX IF NOT EXISTS idx_rainbow_sha1 ON rainbow(sha1);
	CREATE INDEX IF NOT EXISTS idx_rainbow_sha256 ON rainbow(sha256);
	CREATE INDEX IF NOT EXISTS idx_rainbow_sha512 ON rainbow(sha512);

	-- Import history, one row per bulk import run
	CREATE TABLE IF NOT EXISTS imports (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		checksum TEXT NOT NULL,
		total_lines INTEGER NOT NULL,
		accepted INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		blank INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_imports_started ON imports(started_at);
	`

// EnsureSchema creates the rainbow and imports tables if they do not exist.
func (rdb *RainbowDB) EnsureSchema(ctx context.Context) error {
	_, err := rdb.db.ExecContext(ctx, schema)
	return storageError("create schema", err)
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertQuery inserts a row unless the plaintext already exists. The
// existence check and the write are one statement, so they cannot be
// separated by another writer.
const insertQuery = `
	INSERT INTO rainbow (plaintext, md5, sha1, sha256, sha512)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(plaintext) DO NOTHING
	`

// insertEntry runs insertQuery on ex and reports whether a row was added.
func insertEntry(ctx context.Context, ex execer, entry *model.Entry) (bool, error) {
	result, err := ex.ExecContext(ctx, insertQuery,
		entry.Plaintext,
		entry.MD5,
		entry.SHA1,
		entry.SHA256,
		entry.SHA512,
	)
	if err != nil {
		return false, storageError("insert entry", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, storageError("insert entry", err)
	}
	return affected == 1, nil
}

// Insert stores entry if its plaintext is not in the table yet.
// It returns false, without touching the existing row, for a duplicate.
func (rdb *RainbowDB) Insert(ctx context.Context, entry *model.Entry) (bool, error) {
	return insertEntry(ctx, rdb.db, entry)
}

// selectColumns is the column list every lookup scans into an Entry.
const selectColumns = `SELECT plaintext, md5, sha1, sha256, sha512 FROM rainbow`

// operator returns the comparison operator for the store's match mode.
func (rdb *RainbowDB) operator() string {
	if rdb.matchMode == MatchPattern {
		return "LIKE"
	}
	return "="
}

// LookupByPlaintext returns the first entry whose plaintext matches value,
// or nil if there is none.
func (rdb *RainbowDB) LookupByPlaintext(ctx context.Context, value string) (*model.Entry, error) {
	query := selectColumns + " WHERE plaintext " + rdb.operator() + " ? ORDER BY rowid LIMIT 1"
	return rdb.queryEntry(ctx, "lookup by plaintext", query, value)
}

// LookupByHash returns the first entry where value matches any of the four
// digest columns, or nil if there is none. The same value is compared with
// every column; no guess is made about which algorithm produced it.
func (rdb *RainbowDB) LookupByHash(ctx context.Context, value string) (*model.Entry, error) {
	op := rdb.operator()
	query := selectColumns + " WHERE md5 " + op + " ? OR sha1 " + op + " ? OR sha256 " + op +
		" ? OR sha512 " + op + " ? ORDER BY rowid LIMIT 1"

	hash := strings.ToLower(value)
	return rdb.queryEntry(ctx, "lookup by hash", query, hash, hash, hash, hash)
}

// Lookup returns the first entry where value matches the plaintext or any
// digest column, or nil if there is none.
func (rdb *RainbowDB) Lookup(ctx context.Context, value string) (*model.Entry, error) {
	op := rdb.operator()
	query := selectColumns + " WHERE plaintext " + op + " ? OR md5 " + op + " ? OR sha1 " + op +
		" ? OR sha256 " + op + " ? OR sha512 " + op + " ? ORDER BY rowid LIMIT 1"

	hash := strings.ToLower(value)
	return rdb.queryEntry(ctx, "lookup", query, value, hash, hash, hash, hash)
}

// LookupField dispatches to the lookup for field.
func (rdb *RainbowDB) LookupField(ctx context.Context, field model.Field, value string) (*model.Entry, error) {
	switch field {
	case model.FieldPlaintext:
		return rdb.LookupByPlaintext(ctx, value)
	case model.FieldHash:
		return rdb.LookupByHash(ctx, value)
	default:
		return rdb.Lookup(ctx, value)
	}
}

// queryEntry runs a single-row lookup. sql.ErrNoRows becomes (nil, nil).
func (rdb *RainbowDB) queryEntry(ctx context.Context, op, query string, args ...any) (*model.Entry, error) {
	var entry model.Entry
	err := rdb.db.QueryRowContext(ctx, query, args...).Scan(
		&entry.Plaintext,
		&entry.MD5,
		&entry.SHA1,
		&entry.SHA256,
		&entry.SHA512,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(op, err)
	}
	return &entry, nil
}

// Count returns the number of stored entries.
func (rdb *RainbowDB) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := rdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rainbow").Scan(&count); err != nil {
		return 0, storageError("count entries", err)
	}
	return count, nil
}

// Batch is a transaction of inserts. Nothing inserted through a Batch is
// visible in the file until Commit succeeds.
type Batch struct {
	tx   *sql.Tx
	done bool
}

// Begin starts a Batch. While it is open the single pooled connection is
// held by the transaction, so other RainbowDB methods block until it ends.
func (rdb *RainbowDB) Begin(ctx context.Context) (*Batch, error) {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("begin transaction", err)
	}
	return &Batch{tx: tx}, nil
}

// Insert stores entry inside the transaction unless its plaintext exists,
// either in the file or earlier in this batch.
func (b *Batch) Insert(ctx context.Context, entry *model.Entry) (bool, error) {
	if b.done {
		return false, ErrBatchDone
	}
	return insertEntry(ctx, b.tx, entry)
}

// Commit makes the batch's inserts durable.
func (b *Batch) Commit() error {
	if b.done {
		return ErrBatchDone
	}
	b.done = true
	return storageError("commit transaction", b.tx.Commit())
}

// Rollback discards the batch. It is a no-op after Commit or Rollback.
func (b *Batch) Rollback() error {
	if b.done {
		return nil
	}
	b.done = true
	return storageError("roll back transaction", b.tx.Rollback())
}
