package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockFileName is created next to the database file.
const lockFileName = FileName + ".lock"

// writerLock is a cross-process exclusive lock on the database directory.
// It is held for the lifetime of a RainbowDB opened with Options.Lock.
type writerLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// newWriterLock creates a lock for the database in dir.
func newWriterLock(dir string) *writerLock {
	lockPath := filepath.Join(dir, lockFileName)
	return &writerLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// tryLock acquires the lock without blocking. It returns ErrLocked when
// another process already holds it.
func (l *writerLock) tryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0750); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("%w (lock file %s)", ErrLocked, l.path)
	}

	l.locked = true
	return nil
}

// unlock releases the lock. It is safe to call on an unlocked writerLock.
func (l *writerLock) unlock() error {
	if !l.locked {
		return nil
	}

	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
