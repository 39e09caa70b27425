// Package lock provides a single-instance file lock for the daemon
// entrypoint, the same flock-on-a-pid-file shape used for single-
// instance dispatcher daemons.
package lock

import (
	"fmt"
	"os"
	"syscall"
)

// Acquire opens (creating if needed) and exclusively flocks path,
// writing the current pid for operator debugging. The returned file
// must be kept open for the process lifetime and released with Release.
func Acquire(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("lock: open %s: %w", path, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("another greatworkd instance is running (lock: %s)", path)
	}
	f.Truncate(0)
	f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())
	return f, nil
}

// Release unlocks and removes the lock file.
func Release(f *os.File) {
	if f == nil {
		return
	}
	syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	name := f.Name()
	f.Close()
	os.Remove(name)
}
