package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExpandInputs resolves files, directories, and glob patterns to a sorted,
// de-duplicated list of absolute drawing paths. Directories are scanned one
// level deep for files whose extension is listed in exts. Files named
// explicitly are kept regardless of extension.
func ExpandInputs(patterns []string, exts []string) ([]string, error) {
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		if _, ok := seen[abs]; ok {
			return nil
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
		return nil
	}

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		matches := []string{pattern}
		if hasGlobMeta(pattern) {
			globbed, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			if len(globbed) == 0 {
				return nil, fmt.Errorf("pattern %q matched no files", pattern)
			}
			matches = globbed
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("input %s: %w", match, err)
			}
			if !info.IsDir() {
				if hasGlobMeta(pattern) && !extensionAllowed(match, allowed) {
					continue
				}
				if err := add(match); err != nil {
					return nil, err
				}
				continue
			}
			entries, err := os.ReadDir(match)
			if err != nil {
				return nil, fmt.Errorf("read directory %s: %w", match, err)
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				path := filepath.Join(match, entry.Name())
				if !extensionAllowed(path, allowed) {
					continue
				}
				if err := add(path); err != nil {
					return nil, err
				}
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func hasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

func extensionAllowed(path string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[strings.ToLower(filepath.Ext(path))]
	return ok
}
