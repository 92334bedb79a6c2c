package ingest

import (
	"errors"
	"fmt"
)

// ErrBadLine matches every *LineError via errors.Is.
var ErrBadLine = errors.New("line cannot be stored")

// LineError reports a line that could not be turned into an entry.
type LineError struct {
	// Number is the 1-based position of the line in the input.
	Number int

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Number, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LineError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrBadLine) true for every *LineError.
func (e *LineError) Is(target error) bool {
	return target == ErrBadLine
}
