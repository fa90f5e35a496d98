package lockfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/osadchiy/routerdesk/internal/logger"
)

// ErrHeld is returned when the lock is owned by a live process.
var ErrHeld = errors.New("another operation is in progress")

// lockFilePermissions keeps the lock readable so operators can inspect the owner.
const lockFilePermissions os.FileMode = 0o644

// Lock is an acquired advisory lock.
type Lock struct {
	// path is the filesystem location of the lock file.
	path string
	// pid is the owner process ID written into the file.
	pid int
}

// Acquire takes the advisory lock at path.
//
// If the lock file already exists and its owner process is still alive,
// Acquire returns ErrHeld. A lock whose owner is gone (the process was
// SIGKILLed and never cleaned up) is reclaimed.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	path = filepath.Clean(path)
	pid := os.Getpid()

	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, lockFilePermissions)
		if err == nil {
			if _, err = file.WriteString(strconv.Itoa(pid)); err != nil {
				_ = file.Close()
				_ = os.Remove(path)

				return nil, fmt.Errorf("write lock file: %w", err)
			}

			if err = file.Close(); err != nil {
				_ = os.Remove(path)

				return nil, fmt.Errorf("close lock file: %w", err)
			}

			return &Lock{path: path, pid: pid}, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		owner, ownerErr := Owner(path)
		if ownerErr != nil {
			// The file vanished between our attempts or is unreadable;
			// loop once more and let O_EXCL decide.
			continue
		}

		alive, aliveErr := processAlive(owner)
		if aliveErr != nil || alive {
			return nil, ErrHeld
		}

		logger.WarnKV(ctx, "Reclaiming stale lock", "path", path, "owner_pid", owner)

		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, ErrHeld
		}
	}

	return nil, ErrHeld
}

// Release removes the lock file. Releasing twice is harmless.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", err)
	}

	return nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}

	return l.path
}

// Owner reads the owner PID recorded in the lock file at path.
func Owner(path string) (int, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("read lock file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil {
		return 0, fmt.Errorf("parse lock owner: %w", err)
	}

	return pid, nil
}

// Exists reports whether a lock file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(filepath.Clean(path))

	return err == nil
}

// processAlive reports whether a process with the provided PID exists.
func processAlive(pid int) (bool, error) {
	process, err := ps.FindProcess(pid)
	if err != nil {
		return false, fmt.Errorf("find process %d: %w", pid, err)
	}

	return process != nil, nil
}
