package model

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/nao1215/rainbow/internal/digest"
)

// ErrInvalidPlaintext is returned when a plaintext cannot be stored.
// SQLite TEXT columns hold UTF-8, so byte sequences that are not valid UTF-8
// would be stored in a form that lookups typed on a terminal never match.
var ErrInvalidPlaintext = errors.New("invalid plaintext: not valid UTF-8")

// Entry is one row of the rainbow table.
//
// The four digest fields are always the digests of Plaintext. They are
// computed once by NewEntry and never updated afterwards, so a stored
// entry cannot hold a stale or mismatched digest.
type Entry struct {
	// Plaintext is the original input and the primary key of the table.
	Plaintext string `json:"plaintext"`

	// MD5 is the lowercase hex MD5 digest of Plaintext.
	MD5 string `json:"md5"`

	// SHA1 is the lowercase hex SHA-1 digest of Plaintext.
	SHA1 string `json:"sha1"`

	// SHA256 is the lowercase hex SHA-256 digest of Plaintext.
	SHA256 string `json:"sha256"`

	// SHA512 is the lowercase hex SHA-512 digest of Plaintext.
	SHA512 string `json:"sha512"`
}

// NewEntry builds a complete Entry by computing every digest of plaintext.
// The entry is either fully populated or not returned at all.
func NewEntry(plaintext string) (*Entry, error) {
	if !utf8.ValidString(plaintext) {
		return nil, ErrInvalidPlaintext
	}

	return &Entry{
		Plaintext: plaintext,
		MD5:       digest.MustCompute(digest.MD5, plaintext),
		SHA1:      digest.MustCompute(digest.SHA1, plaintext),
		SHA256:    digest.MustCompute(digest.SHA256, plaintext),
		SHA512:    digest.MustCompute(digest.SHA512, plaintext),
	}, nil
}

// Digest returns the stored digest for alg, or an empty string if alg is
// not one of the table's columns.
func (e *Entry) Digest(alg digest.Algorithm) string {
	switch alg {
	case digest.MD5:
		return e.MD5
	case digest.SHA1:
		return e.SHA1
	case digest.SHA256:
		return e.SHA256
	case digest.SHA512:
		return e.SHA512
	default:
		return ""
	}
}

// Verify recomputes every digest and reports the first mismatch.
func (e *Entry) Verify() error {
	for _, alg := range digest.Algorithms() {
		want := digest.MustCompute(alg, e.Plaintext)
		if got := e.Digest(alg); got != want {
			return fmt.Errorf("%s digest mismatch for entry: got %q, want %q", alg, got, want)
		}
	}
	return nil
}

// String renders the entry as labelled lines, one per column.
func (e *Entry) String() string {
	return fmt.Sprintf("Plaintext: %s\nMD5: %s\nSHA1: %s\nSHA256: %s\nSHA512: %s",
		e.Plaintext, e.MD5, e.SHA1, e.SHA256, e.SHA512)
}
