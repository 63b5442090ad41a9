// Package lock provides the advisory registry lock that serialises
// stat-then-compile sequences across concurrent cmdload processes.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLock is an exclusive advisory lock on a file. The lock file is left in
// place on Unlock; removing it would let a third process lock a fresh inode
// while a second still waits on the old one.
type FileLock struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// New creates a lock on path. Nothing is opened until Lock is called.
func New(path string) *FileLock {
	return &FileLock{path: path}
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// Lock blocks until the lock is acquired.
func (l *FileLock) Lock() error {
	l.mu.Lock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("creating lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("opening lock file: %w", err)
	}

	if err := lockFile(f); err != nil {
		f.Close()
		l.mu.Unlock()
		return fmt.Errorf("acquiring lock %s: %w", l.path, err)
	}

	l.file = f
	return nil
}

// Unlock releases the lock. Unlocking a lock that is not held is a no-op.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	err := unlockFile(l.file)
	l.file.Close()
	l.file = nil
	l.mu.Unlock()

	if err != nil {
		return fmt.Errorf("releasing lock %s: %w", l.path, err)
	}
	return nil
}
