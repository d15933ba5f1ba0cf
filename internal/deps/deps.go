package deps

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Requirement names an external file acadrun needs: the engine, a debugger
// command, or a plugin assembly.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports whether a requirement is satisfied. Path holds the resolved
// location when it is.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

func newStatus(req Requirement) Status {
	return Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
}

// CheckBinaries resolves each requirement as a command on PATH or as an
// explicit executable path.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := newStatus(req)
		if status.Command == "" {
			status.Detail = "command not configured"
		} else if path, err := exec.LookPath(status.Command); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		} else {
			status.Path = path
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

// CheckFile reports whether a required file, such as a plugin assembly, is
// present. When executable is set the file must also carry an execute bit.
func CheckFile(req Requirement, executable bool) Status {
	status := newStatus(req)
	path := status.Command
	if path == "" {
		status.Detail = "path not configured"
		return status
	}
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		status.Detail = fmt.Sprintf("%s does not exist", path)
	case err != nil:
		status.Detail = fmt.Sprintf("stat %s: %v", path, err)
	case info.IsDir():
		status.Detail = fmt.Sprintf("%s is a directory", path)
	case executable && !isExecutable(info):
		status.Detail = fmt.Sprintf("%s is not executable", path)
	default:
		status.Path = path
		status.Available = true
	}
	return status
}

func isExecutable(info os.FileInfo) bool {
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
