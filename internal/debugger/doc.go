// Package debugger attaches an external debugger to a freshly started engine.
//
// Attaching is a development convenience: the hook waits briefly for the
// engine to load, runs a configured attach command such as Delve or gdb with
// the engine's pid, retries a bounded number of times, and never fails the
// run. Every failure is logged and swallowed.
package debugger
