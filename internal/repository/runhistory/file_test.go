package runhistory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/osadchiy/routerdesk/internal/domain/console"
)

// TestLoadMissing returns ErrNotFound for a fresh install.
func TestLoadMissing(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "history.json"))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

// TestSaveLoadRoundtrip persists runs and reads them back intact.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "history.json"))
	ctx := context.Background()

	runs := []*domain.Run{
		{
			ID:         "run-2",
			Action:     "wifi-restart",
			StartedAt:  time.Unix(200, 0).UTC(),
			FinishedAt: time.Unix(201, 0).UTC(),
			Status:     domain.StatusSucceeded,
		},
		{
			ID:         "run-1",
			Action:     "packages-update",
			Args:       []string{"--force"},
			Actor:      &domain.Actor{Hostname: "gw-home", Username: "root"},
			StartedAt:  time.Unix(100, 0).UTC(),
			FinishedAt: time.Unix(130, 0).UTC(),
			Status:     domain.StatusFailed,
			ExitCode:   1,
			Error:      "opkg exited with status 1",
		},
	}

	require.NoError(t, repo.Save(ctx, runs))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, runs, loaded)
}
