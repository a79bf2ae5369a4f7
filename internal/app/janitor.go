package app

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Janitor removes transient job paths after the artifact has been handed
// off for delivery. Removal is best-effort: a failure on one path never
// prevents the attempt on the next, and nothing is ever surfaced to the
// caller.
type Janitor struct {
	fs     afero.Fs
	logger *zap.Logger
}

// NewJanitor creates a janitor.
func NewJanitor(fs afero.Fs, logger *zap.Logger) *Janitor {
	return &Janitor{fs: fs, logger: logger}
}

// Remove deletes each path, recursively for directories. Missing paths are
// ignored; other failures are logged and swallowed.
func (j *Janitor) Remove(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}

		info, err := j.fs.Stat(path)
		if err != nil {
			// already gone, or not statable; either way nothing useful to do
			continue
		}

		if info.IsDir() {
			err = j.fs.RemoveAll(path)
		} else {
			err = j.fs.Remove(path)
		}
		if err != nil {
			j.logger.Warn("Cleanup failed", zap.String("path", path), zap.Error(err))
		}
	}
}
