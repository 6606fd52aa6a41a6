// Package filelock implements advisory locking over files and directories.
package filelock

import (
	"os"
	"syscall"
)

// FileLock is an advisory flock-based lock on a path. The path must already
// exist; directories may be locked as well as files.
type FileLock struct {
	file *os.File
}

// NewLock opens the given path for locking. The caller must Close the
// returned lock.
func NewLock(path string) (*FileLock, error) {
	lockFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return &FileLock{file: lockFile}, nil
}

// Close releases the lock (if held) and the underlying file.
func (l *FileLock) Close() error {
	if l.file == nil {
		return nil
	}

	return l.file.Close()
}

// LockExclusive blocks until an exclusive lock is acquired.
func (l *FileLock) LockExclusive() error {
	return syscall.Flock(int(l.file.Fd()), syscall.LOCK_EX)
}

// LockShared blocks until a shared lock is acquired.
func (l *FileLock) LockShared() error {
	return syscall.Flock(int(l.file.Fd()), syscall.LOCK_SH)
}

// TryLockExclusive attempts to acquire an exclusive lock without blocking,
// reporting whether the lock was acquired.
func (l *FileLock) TryLockExclusive() (bool, error) {
	return l.tryLock(syscall.LOCK_EX)
}

// TryLockShared attempts to acquire a shared lock without blocking,
// reporting whether the lock was acquired.
func (l *FileLock) TryLockShared() (bool, error) {
	return l.tryLock(syscall.LOCK_SH)
}

// Unlock releases a held lock without closing the underlying file.
func (l *FileLock) Unlock() error {
	return syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
}

func (l *FileLock) tryLock(how int) (bool, error) {
	err := syscall.Flock(int(l.file.Fd()), how|syscall.LOCK_NB)
	if err == syscall.EWOULDBLOCK {
		return false, nil
	} else if err != nil {
		return false, err
	}

	return true, nil
}
