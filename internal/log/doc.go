// Package log builds slog loggers that never print the contents of word lists.
//
// Plaintexts are candidate passwords, so the SecureHandler masks attributes
// whose key names a plaintext, word, line, password or other credential, and
// values shaped like tokens, proxy credentials or private keys. Counts,
// paths, URLs and digests pass through.
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Warn("skipping line", "line_number", 12, "plaintext", word) // plaintext is masked
package log
