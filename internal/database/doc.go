// Package database provides SQLite-based storage for the rainbow table.
//
// This package implements RainbowDB, which stores:
//   - Entries: one row per plaintext with its MD5, SHA-1, SHA-256 and SHA-512 digests
//   - Import records: one row per bulk import run for later auditing
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. The whole table is a single file under the user's data directory
// 2. CGO-free implementation allows easy cross-compilation
// 3. A primary key on plaintext gives insert-if-absent in one statement
// 4. WAL mode keeps lookups fast while an import is writing
//
// The store targets a single writer. Opening with Options.Lock takes an
// exclusive file lock next to the database so a second writer process fails
// fast instead of interleaving with the first.
package database
