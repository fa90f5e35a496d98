package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFetchProfile verifies parsing and verbatim retention of the remote document.
func TestFetchProfile(t *testing.T) {
	t.Parallel()

	const body = `{
		"fallback_script_url": "https://fleet.local/fallback.sh",
		"actions": {"dns-flush": ["/etc/init.d/dnsmasq", "restart"]},
		"update_channel": "stable",
		"motd": "maintenance window tonight"
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	profile, err := FetchProfile(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "https://fleet.local/fallback.sh", profile.FallbackScriptURL)
	require.Equal(t, []string{"/etc/init.d/dnsmasq", "restart"}, profile.Actions["dns-flush"])
	require.Equal(t, "stable", profile.UpdateChannel)
	require.Equal(t, []byte(body), profile.Raw)
}

// TestFetchProfileErrors covers missing URL and bad status handling.
func TestFetchProfileErrors(t *testing.T) {
	t.Parallel()

	_, err := FetchProfile(context.Background(), "")
	require.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err = FetchProfile(context.Background(), srv.URL)
	require.Error(t, err)
	require.ErrorIs(t, err, errBadProfileStatus)
}
