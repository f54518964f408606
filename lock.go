// OS-level file locking for cross-process coordination.
//
// lockedFile pairs an open file handle with the advisory lock held on
// it; the lock and the handle share a lifetime, so release drops both.
// Acquisition races the blocking flock syscall against a context: the
// syscall runs on its own goroutine, and if the context wins, the stray
// grant is released the moment it lands. Once the lock wins the race
// the operation is no longer interruptible.
package tomldb

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// LockMode selects shared (read) or exclusive (write) locking.
type LockMode int

const (
	LockShared LockMode = iota
	LockExclusive
)

// lockedFile is an open handle carrying an advisory lock.
type lockedFile struct {
	mu sync.Mutex
	f  *os.File
}

// acquireLock opens path and takes an advisory lock on it, racing the
// context. The OpenFlags decide the handle's access mode; O_CREATE is
// never passed here, Open owns file creation.
func acquireLock(ctx context.Context, path string, flags int, mode LockMode) (*lockedFile, error) {
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	granted := make(chan error, 1)
	go func() {
		granted <- flockFile(f, mode)
	}()

	select {
	case <-ctx.Done():
		// The flock is still in flight. Whoever wins it later must not
		// keep it: release and close as soon as the syscall returns.
		go func() {
			if err := <-granted; err == nil {
				_ = funlockFile(f)
			}
			_ = f.Close()
		}()
		return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	case err := <-granted:
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("locking %s: %w", path, err)
		}
		return &lockedFile{f: f}, nil
	}
}

// File returns the locked handle.
func (l *lockedFile) File() *os.File {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f
}

// release drops the lock and closes the handle. Safe to call more than
// once; later calls are no-ops.
func (l *lockedFile) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return
	}
	_ = funlockFile(l.f)
	_ = l.f.Close()
	l.f = nil
}
