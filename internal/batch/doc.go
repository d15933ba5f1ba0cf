// Package batch runs one plugin command across many drawings.
//
// Inputs are expanded from files, directories, and glob patterns, then
// processed one engine at a time. Each drawing can be staged into a private
// work directory so result artifacts never land beside the source. Every
// harvested result is written to "<output>/<name>.json" and every run is
// recorded in history. An exclusive lock on the output directory keeps two
// batches from interleaving their results.
package batch
