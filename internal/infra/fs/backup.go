package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/spf13/afero"

	"github.com/Ajay03299/DevForge/internal/app"
	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// BackupSuffix is appended to the target path to form the backup path
const BackupSuffix = ".bak"

// ErrNoBackup is returned by Restore when no backup exists for the target
var ErrNoBackup = errors.New("no backup found")

// BackupPath returns the sidecar backup path for target
func BackupPath(target string) string {
	return target + BackupSuffix
}

// BackupManager owns the target file and its sidecar backup. Within one
// session the backup is written at most once; Release ends the session so
// the next one replaces a stale backup.
type BackupManager struct {
	fs afero.Fs

	mu    sync.Mutex
	taken map[string]bool
}

// NewBackupManager creates a backup manager over fsys
func NewBackupManager(fsys afero.Fs) *BackupManager {
	return &BackupManager{fs: fsys, taken: make(map[string]bool)}
}

// Read returns the current content of the target
func (m *BackupManager) Read(path string) (string, error) {
	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// EnsureBackup stores original as the backup unless this session already did.
// It reports whether a backup was written.
func (m *BackupManager) EnsureBackup(path, original string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.taken[path] {
		return false, nil
	}
	perm := fileMode(m.fs, path, 0o644)
	if err := WriteFileAtomic(m.fs, BackupPath(path), []byte(original), perm); err != nil {
		return false, repair.NewError(repair.CodeBackupIOFailure, "failed to write backup for "+path, err)
	}
	m.taken[path] = true
	app.GetLogger().Debug("backup written: %s", BackupPath(path))
	return true, nil
}

// Apply replaces the target content atomically, keeping its mode
func (m *BackupManager) Apply(path, content string) error {
	perm := fileMode(m.fs, path, 0o644)
	if err := WriteFileAtomic(m.fs, path, []byte(content), perm); err != nil {
		return repair.NewError(repair.CodeApplyIOFailure, "failed to write "+path, err)
	}
	return nil
}

// HasBackup reports whether a backup file exists for the target
func (m *BackupManager) HasBackup(path string) bool {
	ok, err := afero.Exists(m.fs, BackupPath(path))
	return err == nil && ok
}

// Restore copies the backup back over the target and returns the restored
// content. The backup itself is kept.
func (m *BackupManager) Restore(path string) (string, error) {
	data, err := afero.ReadFile(m.fs, BackupPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", path, ErrNoBackup)
		}
		return "", repair.NewError(repair.CodeBackupIOFailure, "failed to read backup for "+path, err)
	}
	if err := m.Apply(path, string(data)); err != nil {
		return "", err
	}
	app.GetLogger().Info("restored %s from %s", path, BackupPath(path))
	return string(data), nil
}

// BackupPath names the backup artifact for path
func (m *BackupManager) BackupPath(path string) string {
	return BackupPath(path)
}

// Release ends the session for path
func (m *BackupManager) Release(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.taken, path)
}
