package output

import "context"

// TargetStore reads and writes the file under repair and its backup
type TargetStore interface {
	// Read returns the current content of the target
	Read(path string) (string, error)

	// EnsureBackup stores original once per session; reports whether it wrote
	EnsureBackup(path, original string) (bool, error)

	// Apply replaces the target content atomically
	Apply(path, content string) error

	// Restore copies the backup back over the target
	Restore(path string) (string, error)

	// Release ends the session for path
	Release(path string)

	// BackupPath names the backup artifact for path
	BackupPath(path string) string
}

// PathLocker serializes sessions on the same target
type PathLocker interface {
	// Lock blocks until path is free or ctx is done; the returned func releases it
	Lock(ctx context.Context, path string) (func() error, error)
}
