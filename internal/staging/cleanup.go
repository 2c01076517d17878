package staging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lessonvault/internal/logging"
)

// Purge reports what CleanStale removed and what it could not.
type Purge struct {
	Removed []string
	Err     error
}

// CleanStale removes scratch directories under root whose modification time
// is older than maxAge. Directories belonging to keepRunID are never touched.
// Leftovers only exist when a previous run was killed before its course
// tasks unwound.
func CleanStale(root string, maxAge time.Duration, keepRunID string, logger *slog.Logger) Purge {
	var purge Purge
	root = strings.TrimSpace(root)
	if root == "" || maxAge <= 0 {
		return purge
	}
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return purge
	}
	if err != nil {
		purge.Err = fmt.Errorf("read staging root: %w", err)
		return purge
	}

	var failures []error
	cutoff := time.Now().Add(-maxAge)
	keepPrefix := ""
	if keepRunID = strings.TrimSpace(keepRunID); keepRunID != "" {
		keepPrefix = sanitize(keepRunID) + "-"
	}
	for _, entry := range entries {
		if !entry.IsDir() || (keepPrefix != "" && strings.HasPrefix(entry.Name(), keepPrefix)) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			failures = append(failures, err)
			logging.WarnWithContext(logger, "stale scratch directory not removed", "staging_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check staging_dir permissions"),
			)
			continue
		}
		purge.Removed = append(purge.Removed, path)
		if logger != nil {
			logger.Debug("stale scratch directory removed",
				logging.String("path", path),
				logging.Duration("age", time.Since(info.ModTime()).Round(time.Minute)),
			)
		}
	}
	purge.Err = errors.Join(failures...)
	if logger != nil && len(purge.Removed) > 0 {
		logger.Info("purged stale scratch directories",
			logging.Int("count", len(purge.Removed)),
			logging.String(logging.FieldEventType, "staging_cleanup"),
		)
	}
	return purge
}
