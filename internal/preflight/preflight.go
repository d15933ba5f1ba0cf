package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"acadrun/internal/config"
	"acadrun/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// plugin is checked when non-empty.
func RunAll(ctx context.Context, cfg *config.Config, plugin string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckEngine(cfg.Engine.Path)}

	if strings.TrimSpace(plugin) != "" {
		results = append(results, fromStatus(deps.CheckFile(deps.Requirement{Name: "Plugin", Command: plugin}, false)))
	}

	tempDir := cfg.Engine.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	results = append(results, CheckDirectoryAccess("Temp directory", tempDir))

	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}

	if debuggerEnabled(cfg) {
		for _, status := range CheckSystemDeps(ctx, cfg)[1:] {
			results = append(results, fromStatus(status))
		}
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err summarises failed results as a single error, or nil when all passed.
func Err(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
}

func debuggerEnabled(cfg *config.Config) bool {
	mode := strings.ToLower(strings.TrimSpace(cfg.Debugger.Mode))
	return mode != "" && mode != "off"
}

func fromStatus(status deps.Status) Result {
	result := Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Detail}
	if status.Available {
		result.Detail = status.Command
	} else if status.Optional && result.Detail != "" {
		result.Detail += " (optional)"
	}
	return result
}
