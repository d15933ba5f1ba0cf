package engine

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// AutoDetect is the engine path value that selects an installed release.
const AutoDetect = "auto"

// KnownPaths maps engine releases to their default install locations.
var KnownPaths = map[string]string{
	"2014": `C:\Program Files\Autodesk\AutoCAD 2014\accoreconsole.exe`,
	"2015": `C:\Program Files\Autodesk\AutoCAD 2015\accoreconsole.exe`,
	"2016": `C:\Program Files\Autodesk\AutoCAD 2016\accoreconsole.exe`,
}

// ErrEngineNotFound reports that no engine executable could be located.
var ErrEngineNotFound = errors.New("engine executable not found")

// Releases returns the known release names, newest first.
func Releases() []string {
	releases := make([]string, 0, len(KnownPaths))
	for release := range KnownPaths {
		releases = append(releases, release)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(releases)))
	return releases
}

// DetectEngine returns the newest installed release and its path.
func DetectEngine() (release, path string, ok bool) {
	return detectEngine(fileExists)
}

func detectEngine(exists func(string) bool) (string, string, bool) {
	for _, release := range Releases() {
		if candidate := KnownPaths[release]; exists(candidate) {
			return release, candidate, true
		}
	}
	return "", "", false
}

// ResolveBinary turns a configured engine path into an executable location.
// "auto" picks the newest installed release; bare names are looked up on PATH.
func ResolveBinary(configured string) (string, error) {
	configured = strings.TrimSpace(configured)
	switch {
	case configured == "":
		return "", fmt.Errorf("%w: no engine path configured", ErrEngineNotFound)
	case strings.EqualFold(configured, AutoDetect):
		if _, path, ok := DetectEngine(); ok {
			return path, nil
		}
		return "", fmt.Errorf("%w: no known release installed", ErrEngineNotFound)
	case strings.ContainsAny(configured, `/\`):
		if !fileExists(configured) {
			return "", fmt.Errorf("%w: %s", ErrEngineNotFound, configured)
		}
		return configured, nil
	}
	path, err := exec.LookPath(configured)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrEngineNotFound, configured, err)
	}
	return path, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
