package pipeline

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"rpgdecrypt/internal/logging"
)

// staleTempAge guards temp files when no run lock is held, since another
// writer may still own them.
const staleTempAge = 10 * time.Minute

// cleanupResult contains the outcome of a leftover temp file sweep.
type cleanupResult struct {
	Removed []string
	Errors  []*FileError
}

// cleanStale removes leftover temp files whose modification time is older
// than maxAge. A zero maxAge removes every leftover.
func cleanStale(paths []string, maxAge time.Duration, logger *slog.Logger) cleanupResult {
	var result cleanupResult
	cutoff := time.Now().Add(-maxAge)

	for _, path := range paths {
		info, err := os.Lstat(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				result.Errors = append(result.Errors, &FileError{Path: path, Op: OpRemove, Err: err})
			}
			continue
		}
		if maxAge > 0 && !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			result.Errors = append(result.Errors, &FileError{Path: path, Op: OpRemove, Err: err})
			logging.WarnWithContext(logger, "failed to remove leftover temp file", "temp_cleanup_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the file by hand"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Debug("removed leftover temp file",
			logging.String(logging.FieldPath, path),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "temp_cleanup"),
		)
	}
	return result
}
