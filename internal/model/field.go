package model

import (
	"fmt"
	"strings"
)

// Field selects the columns a lookup value is matched against.
type Field int

const (
	// FieldAny matches the plaintext column and every digest column.
	FieldAny Field = iota

	// FieldPlaintext matches the plaintext column only.
	FieldPlaintext

	// FieldHash matches the md5, sha1, sha256 and sha512 columns.
	// No attempt is made to work out which algorithm a value belongs to.
	FieldHash
)

// String returns the flag spelling of the field.
func (f Field) String() string {
	switch f {
	case FieldAny:
		return "any"
	case FieldPlaintext:
		return "plaintext"
	case FieldHash:
		return "hash"
	default:
		return "unknown"
	}
}

// ParseField converts a flag value into a Field.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return FieldAny, nil
	case "plaintext", "text":
		return FieldPlaintext, nil
	case "hash", "digest":
		return FieldHash, nil
	default:
		return FieldAny, fmt.Errorf("unknown lookup field %q (want any, plaintext or hash)", s)
	}
}
