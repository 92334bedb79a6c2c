// Package model defines the core data structures used throughout rainbow.
//
// This package contains the following main types:
//   - Entry: A plaintext together with its four digests (one rainbow table row)
//   - ImportRecord: The bookkeeping row written after every bulk import
//   - Field: Which columns a lookup is matched against
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The database, ingest and report packages all need these
// types, so centralizing them prevents import cycles.
package model
