package database

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage matches every *StorageError via errors.Is.
	ErrStorage = errors.New("storage failure")

	// ErrDatabaseNotFound is returned by Open when CreateIfNotExists is false
	// and there is no database file in the directory.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrLocked is returned by Open when another process holds the writer lock.
	ErrLocked = errors.New("database is locked by another rainbow process")

	// ErrBatchDone is returned when a committed or rolled back Batch is used.
	ErrBatchDone = errors.New("batch already committed or rolled back")
)

// StorageError reports a failure of the underlying store. Op names the
// operation that failed so the CLI can print a useful message.
type StorageError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

// Unwrap returns the driver error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStorage) true for every StorageError.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// storageError wraps err as a StorageError for op. A nil err stays nil.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
