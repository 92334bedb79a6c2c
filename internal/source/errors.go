package source

import (
	"errors"
	"fmt"
)

var (
	// ErrSource matches every *Error via errors.Is.
	ErrSource = errors.New("source failure")

	// ErrBodyTooLarge is returned when a download exceeds the size limit.
	ErrBodyTooLarge = errors.New("response body exceeds size limit")

	// ErrUnexpectedStatus is returned for non-2xx HTTP responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrUnknownEncoding is returned for an encoding name x/text does not know.
	ErrUnknownEncoding = errors.New("unknown text encoding")
)

// Error reports a word list that could not be read.
type Error struct {
	// Location is the path or URL that failed.
	Location string

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("failed to read word list %s: %v", e.Location, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrSource) true for every *Error.
func (e *Error) Is(target error) bool {
	return target == ErrSource
}
