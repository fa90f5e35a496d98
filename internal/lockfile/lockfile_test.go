package lockfile

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAcquireRelease covers the happy path: take the lock, release it, take it again.
func TestAcquireRelease(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "console.lock")
	ctx := context.Background()

	lock, err := Acquire(ctx, path)
	require.NoError(t, err)
	require.True(t, Exists(path))

	owner, err := Owner(path)
	require.NoError(t, err)
	require.Equal(t, os.Getpid(), owner)

	require.NoError(t, lock.Release())
	require.False(t, Exists(path))

	// Double release is harmless.
	require.NoError(t, lock.Release())

	lock, err = Acquire(ctx, path)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}

// TestAcquireHeld verifies a second acquisition against a live owner fails with ErrHeld.
func TestAcquireHeld(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "console.lock")
	ctx := context.Background()

	lock, err := Acquire(ctx, path)
	require.NoError(t, err)

	defer func() {
		_ = lock.Release()
	}()

	_, err = Acquire(ctx, path)
	require.ErrorIs(t, err, ErrHeld)
}

// TestAcquireStale verifies a lock owned by a dead PID is reclaimed.
func TestAcquireStale(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "console.lock")

	// PIDs this large do not occur on the systems we target.
	const deadPID = 1 << 28

	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(deadPID)), 0o644))

	lock, err := Acquire(context.Background(), path)
	require.NoError(t, err)

	owner, err := Owner(path)
	require.NoError(t, err)
	require.Equal(t, os.Getpid(), owner)

	require.NoError(t, lock.Release())
}

// TestOwnerGarbage rejects unreadable owner records.
func TestOwnerGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "console.lock")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))

	_, err := Owner(path)
	require.Error(t, err)
}
