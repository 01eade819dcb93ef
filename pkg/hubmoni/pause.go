package hubmoni

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Pause suppresses alerts until now+d by writing the expiry, in Unix
// seconds, to path.
func Pause(path string, d time.Duration, now time.Time) (time.Time, error) {
	until := now.Add(d)

	if err := os.WriteFile(path, []byte(strconv.FormatInt(until.Unix(), 10)+"\n"), 0o644); err != nil {
		return time.Time{}, fmt.Errorf("writing pause file: %w", err)
	}

	return until, nil
}

// PausedUntil returns the expiry stored in path. A missing file is not
// paused and yields the zero time.
func PausedUntil(path string) (time.Time, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, nil
	}

	if err != nil {
		return time.Time{}, fmt.Errorf("reading pause file: %w", err)
	}

	sec, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %s: %w", errBadPauseFile, path, err)
	}

	return time.Unix(sec, 0), nil
}

// Resume removes the pause file.
func Resume(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing pause file: %w", err)
	}

	return nil
}

// HostUptime is the time since the host booted.
func HostUptime() (time.Duration, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, fmt.Errorf("sysinfo: %w", err)
	}

	return time.Duration(info.Uptime) * time.Second, nil
}
