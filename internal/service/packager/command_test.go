package packager

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/osadchiy/routerdesk/internal/config"
	"github.com/osadchiy/routerdesk/internal/service/updater"
)

// chdir stands in for testing.T.Chdir, which needs Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestPackagerWritesManifest(t *testing.T) {
	chdir(t, t.TempDir())

	// Fake release binaries; the settings file is produced by the packager.
	for _, name := range updater.FilesWithChecksum() {
		if name == config.DefaultConfigFilename {
			continue
		}

		require.NoError(t, os.WriteFile(name, []byte("binary "+name), 0o700))
	}

	err := Run(context.Background(), &Options{
		UpdateFolder: "https://updates.example.org/routerdesk/",
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(updater.VersionFilename)
	require.NoError(t, err)

	var desc updater.Description
	require.NoError(t, yaml.Unmarshal(raw, &desc))

	require.NotEmpty(t, desc.VersionNumber)
	require.Len(t, desc.Files, len(updater.FilesWithChecksum()))
	require.Contains(t, desc.Roles, updater.RoleRouter)
	require.Contains(t, desc.Roles, updater.RoleOperator)

	for _, checksum := range desc.Files {
		require.NotEmpty(t, checksum)
	}
}

func TestPackagerMissingArtifactFails(t *testing.T) {
	chdir(t, t.TempDir())

	err := Run(context.Background(), &Options{
		UpdateFolder: "https://updates.example.org/routerdesk/",
	})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPackagerRefusesWhileUpdaterRuns(t *testing.T) {
	chdir(t, t.TempDir())

	require.NoError(t, os.WriteFile(updater.MarkerFilename, nil, 0o600))

	err := Run(context.Background(), &Options{
		UpdateFolder: "https://updates.example.org/routerdesk/",
	})
	require.ErrorIs(t, err, errUpdaterRunning)
}
