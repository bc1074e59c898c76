package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteFileAtomic writes data to a file atomically using temp file + rename.
// The temp file lives in the target's directory so the rename never crosses
// filesystems; readers see either the old content or the new, never a mix.
func WriteFileAtomic(fsys afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpFile, err := afero.TempFile(fsys, dir, ".devforge-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// No-op once the rename succeeded
	defer fsys.Remove(tmpPath)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := fsys.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set mode on temp file: %w", err)
	}
	if err := fsys.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	syncParent(fsys, dir)
	return nil
}

// fileMode returns the mode of an existing file, or def when it cannot be read
func fileMode(fsys afero.Fs, path string, def os.FileMode) os.FileMode {
	info, err := fsys.Stat(path)
	if err != nil {
		return def
	}
	return info.Mode().Perm()
}
