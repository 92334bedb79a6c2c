// Package source loads newline-delimited word lists for import.
//
// A location is either a path on the local file system or an http(s) URL.
// Either way the whole body is read into memory, optionally decoded from a
// legacy character set, and split into lines before any of it reaches the
// ingestion pipeline. A source that cannot be read fails before a single
// line is processed.
package source
