//go:build unix || linux || darwin

package tomldb

import (
	"os"
	"syscall"
)

func flockFile(f *os.File, mode LockMode) error {
	op := syscall.LOCK_SH
	if mode == LockExclusive {
		op = syscall.LOCK_EX
	}
	// Blocking on purpose; cancellation is handled by the caller's race.
	return syscall.Flock(int(f.Fd()), op)
}

func funlockFile(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
