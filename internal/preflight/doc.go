// Package preflight provides readiness checks for the engine, plugin files,
// and directories acadrun depends on.
//
// The CLI "check" command renders every result as a table, and the run and
// batch commands call RunAll before launching the engine so a missing plugin
// or unwritable temp directory fails fast instead of after an engine start.
//
// Debugger checks are only run when the debugger is enabled.
package preflight
