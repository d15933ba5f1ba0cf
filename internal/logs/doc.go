// Package logs reads the acadrun log file for the CLI: the last N lines, and
// a follow loop that streams appended lines until the context ends.
package logs
