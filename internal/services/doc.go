// Package services defines shared utilities consumed by the engine runner, the
// batch processor, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, drawing paths, and plugin
//     command names for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses.
//
// Use these helpers when wiring new components so error classification and
// observability stay uniform.
package services
