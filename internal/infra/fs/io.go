package fs

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/afero"

	"github.com/Ajay03299/DevForge/internal/app"
)

// FsyncDir syncs directory metadata to disk so a completed rename survives a crash
func FsyncDir(dirPath string) error {
	if dirPath == "" {
		return fmt.Errorf("FsyncDir: directory path is empty")
	}

	dir, err := os.Open(dirPath)
	if err != nil {
		return fmt.Errorf("FsyncDir: failed to open directory %s: %w", dirPath, err)
	}
	defer dir.Close()

	if err := dir.Sync(); err != nil {
		if isNotSupported(err) {
			return nil
		}
		return fmt.Errorf("FsyncDir: failed to sync directory %s: %w", dirPath, err)
	}
	return nil
}

// syncParent persists a rename in dir. Only the OS filesystem has a
// directory entry worth syncing; in-memory backends are skipped.
func syncParent(fsys afero.Fs, dir string) {
	if _, ok := fsys.(*afero.OsFs); !ok {
		return
	}
	if err := FsyncDir(dir); err != nil {
		app.GetLogger().Warn("rename in %s may not be durable: %v", dir, err)
	}
}

// Some filesystems (and Windows) refuse fsync on directories
func isNotSupported(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTSUP)
}
