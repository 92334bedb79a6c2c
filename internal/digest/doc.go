// Package digest computes the hex digests stored in the rainbow table.
//
// The set of algorithms is closed: MD5, SHA-1, SHA-256 and SHA-512, one per
// column of the rainbow table. Adding an algorithm means adding a column.
//
// Every function in this package is pure. The same input and algorithm always
// produce the same lowercase hexadecimal string of a fixed length.
package digest
