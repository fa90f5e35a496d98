package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/osadchiy/routerdesk/internal/logger"
)

// Watch re-loads the settings file whenever it changes and invokes onChange
// with the freshly validated configuration. Invalid intermediate states
// (editors truncate before writing) are logged and skipped. Watch blocks
// until the context is canceled.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	if path == "" {
		path = DefaultConfigFilename
	}

	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	defer func() {
		_ = watcher.Close()
	}()

	// Watch the directory, not the file: most editors replace the file,
	// which would otherwise drop the watch after the first change.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != path {
				continue
			}

			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				logger.WarnKV(ctx, "Ignoring settings change", "path", path, "error", err)
				continue
			}

			logger.InfoKV(ctx, "Settings reloaded", "path", path)
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.ErrorKV(ctx, "Settings watcher error", "error", err)
		}
	}
}
