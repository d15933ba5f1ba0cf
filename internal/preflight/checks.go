package preflight

import (
	"context"
	"fmt"
	"os"

	"acadrun/internal/config"
	"acadrun/internal/deps"
	"acadrun/internal/engine"
)

// CheckEngine resolves the configured engine executable.
func CheckEngine(configured string) Result {
	const name = "Engine"
	path, err := engine.ResolveBinary(configured)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkAccess(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external executables for the given config.
// The engine is always first; the debugger command and plugin follow when
// the debugger is enabled.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	enginePath, err := engine.ResolveBinary(cfg.Engine.Path)
	engineStatus := deps.Status{
		Name:        "Engine",
		Command:     cfg.Engine.Path,
		Description: "Console CAD engine",
	}
	if err != nil {
		engineStatus.Detail = err.Error()
	} else {
		engineStatus.Command = enginePath
		engineStatus.Available = true
	}
	statuses := []deps.Status{engineStatus}

	if !debuggerEnabled(cfg) {
		return statuses
	}
	command := ""
	if len(cfg.Debugger.Command) > 0 {
		command = cfg.Debugger.Command[0]
	}
	statuses = append(statuses, deps.CheckBinaries([]deps.Requirement{{
		Name:        "Debugger",
		Command:     command,
		Description: "Attach command for engine debugging",
		Optional:    true,
	}})...)
	if cfg.Debugger.Plugin != "" {
		statuses = append(statuses, deps.CheckFile(deps.Requirement{
			Name:        "Debug plugin",
			Command:     cfg.Debugger.Plugin,
			Description: "Assembly loaded before the plugin while debugging",
		}, false))
	}
	return statuses
}
