// Package config loads, normalizes, and validates acadrun configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ACADRUN_ENGINE. The Config type centralizes every knob the runner, batch
// processor, and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
