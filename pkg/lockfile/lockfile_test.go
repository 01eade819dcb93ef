package lockfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deadPID is above the kernel's pid_max, so no process can have it.
const deadPID = 1 << 30

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubmoni.pid")

	lock, err := Acquire(path)
	require.NoError(t, err)
	assert.Equal(t, path, lock.Path())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid())+"\n", string(data))

	_, err = Acquire(path)
	require.ErrorIs(t, err, ErrLocked)

	owner, err := Owner(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), owner)

	require.NoError(t, lock.Release())
	assert.NoFileExists(t, path)

	// a second release is a no-op
	require.NoError(t, lock.Release())
}

func TestAcquireStale(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "dead process", content: strconv.Itoa(deadPID) + "\n"},
		{name: "garbage", content: "not a pid"},
		{name: "empty", content: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "hubmoni.pid")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			lock, err := Acquire(path)
			require.NoError(t, err)

			t.Cleanup(func() { _ = lock.Release() })

			owner, err := Owner(path)
			require.NoError(t, err)
			assert.Equal(t, os.Getpid(), owner)
		})
	}
}

func TestReleaseKeepsForeignLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubmoni.pid")

	lock, err := Acquire(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))
	require.NoError(t, lock.Release())
	assert.FileExists(t, path)
}

func TestAcquireMissingDir(t *testing.T) {
	_, err := Acquire(filepath.Join(t.TempDir(), "missing", "hubmoni.pid"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLocked)
}
