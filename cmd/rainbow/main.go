// Package main provides the entry point for the rainbow CLI.
//
// rainbow keeps a local SQLite rainbow table that maps plaintext strings to
// their MD5, SHA-1, SHA-256 and SHA-512 digests.
//
// Usage:
//
//	rainbow                       # interactive menu
//	rainbow add <string>...
//	rainbow lookup <value>
//	rainbow import <path-or-url>...
//
// See --help for all available options.
package main

// main is the entry point for rainbow.
func main() {
	Execute()
}
