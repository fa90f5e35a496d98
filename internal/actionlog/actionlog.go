package actionlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// logFilePermissions keeps the log readable by the dashboard user.
const logFilePermissions os.FileMode = 0o644

// Log is an append-only text log backed by a single file.
type Log struct {
	// path is the filesystem location of the log file.
	path string
	// mu serializes appends from concurrent callers.
	mu sync.Mutex
}

// New creates a log handle for the provided path. The file is created lazily
// on first append.
func New(path string) *Log {
	return &Log{
		path: filepath.Clean(path),
	}
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Append writes a single line to the end of the log.
func (l *Log) Append(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := l.open()
	if err != nil {
		return err
	}

	defer func() {
		_ = file.Close()
	}()

	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	if _, err := file.WriteString(line); err != nil {
		return fmt.Errorf("append log line: %w", err)
	}

	return nil
}

// OpenWriter returns a writer that appends everything written to it.
// Used to stream combined command output; the caller must Close it.
func (l *Log) OpenWriter() (io.WriteCloser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.open()
}

// Tail returns up to n trailing lines of the log. A missing file yields an
// empty tail, not an error: the daemon may be freshly installed.
func (l *Log) Tail(n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	contents, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(contents), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return lines, nil
}

// Size returns the current log size in bytes, zero when the file is absent.
func (l *Log) Size() int64 {
	info, err := os.Stat(l.path)
	if err != nil {
		return 0
	}

	return info.Size()
}

// open opens the backing file for appending, creating it when absent.
func (l *Log) open() (*os.File, error) {
	file, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, logFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	return file, nil
}
