// Package report renders lookup results and import history.
//
// Three writers share the Writer interface:
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: GitHub-flavored Markdown tables
//   - JSONWriter: JSON for scripts
//
// Writers never touch the store. Callers look values up and pass the results in.
package report
