package operator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osadchiy/routerdesk/internal/config"
)

func TestResolveConsoleAddress(t *testing.T) {
	t.Parallel()

	settings := &config.Config{ListenAddress: "0.0.0.0:8036"}

	address, err := resolveConsoleAddress(settings, "router.lan:9000")
	require.NoError(t, err)
	require.Equal(t, "router.lan:9000", address)

	address, err = resolveConsoleAddress(settings, "")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8036", address)

	settings.ConsoleAddress = "192.168.1.1:8036"
	address, err = resolveConsoleAddress(settings, "")
	require.NoError(t, err)
	require.Equal(t, "192.168.1.1:8036", address)

	_, err = resolveConsoleAddress(&config.Config{}, "")
	require.ErrorIs(t, err, ErrNoConsoleAddress)

	_, err = resolveConsoleAddress(&config.Config{ListenAddress: "8036"}, "")
	require.Error(t, err)
}
