//go:build windows
// +build windows

package fs

import (
	"errors"
	"os"
)

var errWouldBlock = errors.New("lock held by another process")

// flockTry takes an exclusive lock without blocking
// Note: Windows doesn't have direct flock support, so this is a no-op for now
// TODO: Implement Windows file locking using LockFileEx
func flockTry(f *os.File) error {
	return nil
}

// flockUnlock releases the lock on the file
func flockUnlock(f *os.File) error {
	return nil
}
