package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Ajay03299/DevForge/internal/app"
	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// DefaultLockPoll is how often FileLocker retries a held lock
const DefaultLockPoll = 50 * time.Millisecond

// FileLocker serializes sessions on the same target across processes using
// an advisory lock file per absolute target path.
type FileLocker struct {
	dir  string
	poll time.Duration
}

// NewFileLocker creates a locker that keeps lock files under dir
func NewFileLocker(dir string) *FileLocker {
	return &FileLocker{dir: dir, poll: DefaultLockPoll}
}

// LockPath returns the lock file used for target
func (l *FileLocker) LockPath(target string) string {
	return filepath.Join(l.dir, lockKey(target)+".lock")
}

// Lock blocks until target is free or ctx is done
func (l *FileLocker) Lock(ctx context.Context, target string) (func() error, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	f, err := os.OpenFile(l.LockPath(target), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	waited := false
	for {
		err := flockTry(f)
		if err == nil {
			break
		}
		if err != errWouldBlock {
			f.Close()
			return nil, fmt.Errorf("failed to lock %s: %w", target, err)
		}
		if !waited {
			app.GetLogger().Info("waiting for another session on %s", target)
			waited = true
		}
		select {
		case <-ctx.Done():
			f.Close()
			return nil, repair.NewError(repair.CodeTargetBusy, "gave up waiting for "+target, ctx.Err())
		case <-time.After(l.poll):
		}
	}

	var once sync.Once
	var unlockErr error
	return func() error {
		once.Do(func() {
			unlockErr = flockUnlock(f)
			if cerr := f.Close(); unlockErr == nil {
				unlockErr = cerr
			}
		})
		return unlockErr
	}, nil
}

// MemoryLocker serializes sessions on the same target within one process
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

// NewMemoryLocker creates an in-process locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]chan struct{})}
}

// Lock blocks until target is free or ctx is done
func (l *MemoryLocker) Lock(ctx context.Context, target string) (func() error, error) {
	key := lockKey(target)
	for {
		l.mu.Lock()
		ch, busy := l.held[key]
		if !busy {
			ch = make(chan struct{})
			l.held[key] = ch
			l.mu.Unlock()

			var once sync.Once
			return func() error {
				once.Do(func() {
					l.mu.Lock()
					delete(l.held, key)
					l.mu.Unlock()
					close(ch)
				})
				return nil
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, repair.NewError(repair.CodeTargetBusy, "gave up waiting for "+target, ctx.Err())
		}
	}
}

// lockKey hashes the absolute, cleaned target path
func lockKey(target string) string {
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = filepath.Clean(target)
	}
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:])
}
