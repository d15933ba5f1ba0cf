// Package engine drives the console CAD engine.
//
// A run writes a temporary script that disables the trusted-location check,
// loads the plugin assembly and invokes one command, then launches the engine
// against a drawing with that script. The engine is waited on up to a
// timeout; a timed out engine is left running and reported as such. After
// the run the plugin's JSON result, written next to the drawing as
// "<drawing>output.json", is read, removed, and decoded.
//
// Process spawning sits behind the Executor interface so tests can substitute
// fake processes or a shell-script stand-in for the real engine.
package engine
