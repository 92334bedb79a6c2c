package digest

import (
	"crypto/md5"  //nolint:gosec // MD5 is a lookup column, not a security primitive
	"crypto/sha1" //nolint:gosec // SHA-1 is a lookup column, not a security primitive
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Algorithm names a digest algorithm. The value doubles as the column name
// in the rainbow table.
type Algorithm string

// Supported algorithms.
const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
)

// ErrUnknownAlgorithm is returned for an algorithm outside the fixed set.
var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// algorithms is the column order of the rainbow table.
var algorithms = []Algorithm{MD5, SHA1, SHA256, SHA512}

// Algorithms returns the supported algorithms in table column order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, len(algorithms))
	copy(out, algorithms)
	return out
}

// ParseAlgorithm converts a user supplied name such as "SHA-256" or "sha256"
// into an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")

	for _, alg := range algorithms {
		if string(alg) == normalized {
			return alg, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// String returns the algorithm name.
func (a Algorithm) String() string {
	return string(a)
}

// DisplayName returns the label used when printing entries.
func (a Algorithm) DisplayName() string {
	return strings.ToUpper(string(a))
}

// HexLen returns the length of the hex digest, or 0 for unknown algorithms.
func (a Algorithm) HexLen() int {
	h := a.newHash()
	if h == nil {
		return 0
	}
	return h.Size() * 2
}

// newHash returns a fresh hash for the algorithm or nil if it is unknown.
func (a Algorithm) newHash() hash.Hash {
	switch a {
	case MD5:
		return md5.New() //nolint:gosec // see import
	case SHA1:
		return sha1.New() //nolint:gosec // see import
	case SHA256:
		return sha256.New()
	case SHA512:
		return sha512.New()
	default:
		return nil
	}
}

// Compute returns the lowercase hex digest of input under alg.
func Compute(alg Algorithm, input string) (string, error) {
	h := alg.newHash()
	if h == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(alg))
	}
	// hash.Hash.Write never returns an error.
	_, _ = h.Write([]byte(input)) //nolint:errcheck
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MustCompute is Compute for the fixed algorithm set. It panics on an
// unknown algorithm, which is a programming error.
func MustCompute(alg Algorithm, input string) string {
	sum, err := Compute(alg, input)
	if err != nil {
		panic(err)
	}
	return sum
}

// Identify returns the algorithms whose digest length matches value.
// It is a display hint only: value is not checked to be hexadecimal beyond
// its length and character set.
func Identify(value string) []Algorithm {
	value = strings.TrimSpace(value)
	if !IsHex(value) {
		return nil
	}

	var matches []Algorithm
	for _, alg := range algorithms {
		if alg.HexLen() == len(value) {
			matches = append(matches, alg)
		}
	}
	return matches
}

// IsHex reports whether s is a non-empty string of hexadecimal digits.
func IsHex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Fingerprint returns the SHA3-256 hex digest of a raw word list. It
// identifies an imported source in the import history, so re-importing
// identical content is recognisable even under a different URL.
func Fingerprint(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
