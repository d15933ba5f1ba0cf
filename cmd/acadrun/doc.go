// Package main hosts the acadrun CLI entrypoint and command graph.
//
// The Cobra-based command tree runs single plugin commands against drawings,
// drives batches, prints the generated loading script, inspects and prunes
// run history, and scaffolds configuration. It centralizes configuration
// resolution, logger construction, and runner wiring so subcommands can
// focus on presentation.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through dedicated commands or flags here.
package main
