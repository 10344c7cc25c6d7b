package tasks

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zdx/internal/shared"
)

// CleanupManager removes a recording's local working directory once its
// files are safely on the remote. Removal is best-effort: individual
// failures are logged and skipped so a stray open handle never fails a
// run that already uploaded everything.
type CleanupManager struct {
	logger *log.Logger
}

// NewCleanupManager creates a CleanupManager.
func NewCleanupManager(logger *log.Logger) *CleanupManager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CleanupManager{logger: logger}
}

// Purge deletes every regular file under root, then empty directories
// bottom-up, then root itself if it ended up empty. A missing root is a
// no-op. Always returns nil.
func (m *CleanupManager) Purge(root string) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}

	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			m.logger.Warn("cleanup walk error", "path", path, "err", err)
			return nil
		}
		if d.IsDir() {
			if path != root {
				dirs = append(dirs, path)
			}
			return nil
		}
		if rmErr := os.Remove(path); rmErr != nil {
			m.logger.Warn("failed to remove file", "path", path, "err", rmErr)
		} else {
			m.logger.Debug("removed file", "path", path)
		}
		return nil
	})
	if err != nil {
		m.logger.Warn("cleanup walk aborted", "root", root, "err", err)
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		if rmErr := os.Remove(dirs[i]); rmErr != nil {
			m.logger.Warn("failed to remove directory", "path", dirs[i], "err", rmErr)
		}
	}

	if entries, readErr := os.ReadDir(root); readErr == nil && len(entries) == 0 {
		if rmErr := os.Remove(root); rmErr != nil {
			m.logger.Warn("failed to remove directory", "path", root, "err", rmErr)
		}
	}
	return nil
}
