package runhistory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/osadchiy/routerdesk/internal/config"
	domain "github.com/osadchiy/routerdesk/internal/domain/console"
)

// Repository defines persistence operations for the run history.
type Repository interface {
	Load(ctx context.Context) ([]*domain.Run, error)
	Save(ctx context.Context, runs []*domain.Run) error
}

// FileRepository persists the run history to a JSON file on disk.
// The file holds newest-first records and is rewritten atomically enough for
// a single-writer daemon; concurrent access within the process is guarded by
// the mutex.
type FileRepository struct {
	// path is the filesystem location of the JSON history file.
	path string
	// mu protects concurrent access to the history file.
	mu sync.Mutex
}

// ErrNotFound is returned when the history file does not exist yet.
var ErrNotFound = errors.New("run history not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the history from disk.
func (r *FileRepository) Load(_ context.Context) ([]*domain.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read history file: %w", err)
	}

	var runs []*domain.Run
	if err = json.Unmarshal(contents, &runs); err != nil {
		return nil, fmt.Errorf("decode history file: %w", err)
	}

	return runs, nil
}

// Save writes the history to disk using indented JSON so operators can read
// the file directly over ssh.
func (r *FileRepository) Save(_ context.Context, runs []*domain.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}

	return nil
}
