// Package logging assembles structured slog loggers used across acadrun.
//
// It owns the console and JSON handlers, mirrors records into the log file,
// and exposes context-aware helpers so runner code automatically tags log
// lines with run identifiers, drawing paths, and plugin command names. A
// no-op logger is provided for tests and wiring code that cannot fail.
package logging
