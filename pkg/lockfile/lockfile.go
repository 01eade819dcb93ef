// Package lockfile pkg/lockfile/lockfile.go keeps a daemon to a single
// instance per host with a PID file.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

var (
	// ErrLocked is returned when the PID file names a live process.
	ErrLocked = errors.New("already running")

	errStale = errors.New("stale lock file")
)

const maxAttempts = 2

// Lock is a held PID file.
type Lock struct {
	path string
	pid  int
}

// Acquire creates path holding the current PID. A file left by a dead
// process, or one that does not hold a PID, is removed and replaced.
func Acquire(path string) (*Lock, error) {
	pid := os.Getpid()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(pid) + "\n")
			cerr := f.Close()

			if err := errors.Join(werr, cerr); err != nil {
				_ = os.Remove(path)

				return nil, fmt.Errorf("writing %s: %w", path, err)
			}

			return &Lock{path: path, pid: pid}, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("creating %s: %w", path, err)
		}

		owner, err := Owner(path)
		if err == nil {
			return nil, fmt.Errorf("%w: pid %d holds %s", ErrLocked, owner, path)
		}

		if !errors.Is(err, errStale) {
			return nil, err
		}

		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("removing stale %s: %w", path, err)
		}
	}

	return nil, fmt.Errorf("%w: %s keeps reappearing", ErrLocked, path)
}

// Owner returns the live process holding path.
func Owner(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: %s has no pid", errStale, path)
	}

	if !processAlive(pid) {
		return 0, fmt.Errorf("%w: pid %d is not running", errStale, pid)
	}

	return pid, nil
}

// processAlive probes pid with signal 0. EPERM means the process exists
// but belongs to someone else.
func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)

	return err == nil || errors.Is(err, unix.EPERM)
}

// Path is the PID file location.
func (l *Lock) Path() string {
	return l.path
}

// Release removes the PID file if it still names this process.
func (l *Lock) Release() error {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("reading %s: %w", l.path, err)
	}

	if strings.TrimSpace(string(data)) != strconv.Itoa(l.pid) {
		return nil
	}

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", l.path, err)
	}

	return nil
}
