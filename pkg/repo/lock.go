package repo

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrLocked is returned when a lock file could not be taken in time.
var ErrLocked = errors.New("lock held by another process")

const (
	lockRetryDelay = 5 * time.Millisecond
	lockWaitLimit  = 2 * time.Second
)

// fileLock is an advisory lock held by the exclusive creation of
// "<target>.lock". It only guards against other rvcs processes.
type fileLock struct {
	path string
	f    *os.File
}

func acquireLock(target string) (*fileLock, error) {
	lockPath := target + ".lock"
	deadline := time.Now().Add(lockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return &fileLock{path: lockPath, f: f}, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("%s: %w", lockPath, ErrLocked)
			}
			time.Sleep(lockRetryDelay)
			continue
		}
		return nil, err
	}
}

// commitTo writes data into the lock file and renames it over the target,
// which releases the lock.
func (l *fileLock) commitTo(target string, data []byte) error {
	if _, err := l.f.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	err := l.f.Close()
	l.f = nil
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(l.path, target); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	l.path = ""
	return nil
}

// release drops the lock without touching the target. It is safe to call
// after commitTo and on every error path.
func (l *fileLock) release() {
	if l == nil {
		return
	}
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
	if l.path != "" {
		_ = os.Remove(l.path)
		l.path = ""
	}
}
