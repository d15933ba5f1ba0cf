package batch

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"acadrun/internal/logging"
)

// staleStageAge is how old a leftover stage directory must be before a new
// batch removes it.
const staleStageAge = 24 * time.Hour

// CleanupResult lists what a stale-directory sweep removed.
type CleanupResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory with the error that kept it on disk.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes per-run stage directories under root older than maxAge.
// Interrupted batches leave these behind.
func CleanStale(root string, maxAge time.Duration, logger *slog.Logger) CleanupResult {
	var result CleanupResult

	root = strings.TrimSpace(root)
	if root == "" {
		return result
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale stage directory", logging.String("path", dir), logging.Error(err))
			}
			continue
		}
		result.Removed = append(result.Removed, dir)
		if logger != nil {
			logger.Info("removed stale stage directory",
				logging.String("path", dir),
				logging.Duration("age", time.Since(info.ModTime())),
			)
		}
	}
	return result
}
