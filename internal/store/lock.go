package store

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	hippoerrors "github.com/hippo-mem/hippo/internal/errors"
)

// DirLock provides cross-process locking over a Store's data directory, so
// two hippo processes pointed at the same directory don't open conflicting
// SQLite connections or race on the same watcher state.
type DirLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewDirLock builds a lock for dir. The lock file is created at
// <dir>/.hippo.lock.
func NewDirLock(dir string) *DirLock {
	lockPath := filepath.Join(dir, ".hippo.lock")
	return &DirLock{path: lockPath, flock: flock.New(lockPath)}
}

// Lock acquires an exclusive lock, blocking until available.
func (l *DirLock) Lock() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return hippoerrors.StorageError("failed to create lock directory", err).WithDetail("dir", dir)
	}

	if err := l.flock.Lock(); err != nil {
		return hippoerrors.StorageError("failed to acquire store lock", err).WithDetail("path", l.path)
	}
	l.locked = true
	return nil
}

// TryLock attempts to acquire the lock without blocking. Reports whether it
// was acquired.
func (l *DirLock) TryLock() (bool, error) {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, hippoerrors.StorageError("failed to create lock directory", err).WithDetail("dir", dir)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, hippoerrors.StorageError("failed to acquire store lock", err).WithDetail("path", l.path)
	}
	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the lock. Safe to call multiple times or when unlocked.
func (l *DirLock) Unlock() error {
	if !l.locked {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		l.locked = false
		return hippoerrors.StorageError("failed to release store lock", err).WithDetail("path", l.path)
	}
	l.locked = false
	return nil
}

// IsLocked reports whether this DirLock currently holds the lock.
func (l *DirLock) IsLocked() bool {
	return l.locked
}

// Path returns the lock file path.
func (l *DirLock) Path() string {
	return l.path
}
