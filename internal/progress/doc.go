// Package progress renders ingestion progress on a terminal.
//
// Bar implements ingest.Reporter with a pterm progress bar counting accepted
// lines against the total. Nop discards progress and is used when output is
// not a terminal or the user asked for quiet output.
package progress
