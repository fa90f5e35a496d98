package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// sampleInventory resembles the firmware selector API: one complete device,
// one without images, one without a stable release.
const sampleInventory = `{
	"devices": {
		"tplink_archer-c7-v5": {
			"title": "TP-Link Archer C7 v5",
			"target": "ath79/generic",
			"images": [{"name": "openwrt-23.05.3-ath79-generic-tplink_archer-c7-v5-squashfs-sysupgrade.bin"}],
			"supported_releases": {"stable": "23.05.3", "snapshot": "SNAPSHOT"}
		},
		"no-images": {
			"title": "Imageless Device",
			"target": "ramips/mt7621",
			"images": [],
			"supported_releases": {"stable": "23.05.3"}
		},
		"snapshot-only": {
			"title": "Snapshot Device",
			"target": "x86/64",
			"images": [{"name": "x.img"}],
			"supported_releases": {"snapshot": "SNAPSHOT"}
		},
		"avm_fritzbox-4040": {
			"title": "AVM FRITZ!Box 4040",
			"target": "ipq40xx",
			"images": [{"name": "y.img"}],
			"supported_releases": {"stable": "23.05.3"}
		}
	}
}`

// TestProcess filters, derives arch, and sorts by title.
func TestProcess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleInventory))
	}))
	defer srv.Close()

	response, err := Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	devices := Process(response)
	require.Len(t, devices, 2)

	// Sorted by title: AVM before TP-Link.
	require.Equal(t, "AVM FRITZ!Box 4040", devices[0].Title)
	require.Equal(t, "TP-Link Archer C7 v5", devices[1].Title)

	// Arch derived from the target prefix; a target without a slash is
	// taken whole.
	require.Equal(t, "ath79", devices[1].Arch)
	require.Equal(t, "ath79/generic", devices[1].Target)
	require.Equal(t, "ipq40xx", devices[0].Arch)

	require.Equal(t, "tplink_archer-c7-v5", devices[1].Profile)
	require.Equal(t, "23.05.3", devices[1].Version)
}

// TestRunWritesFile exercises the full entry point against a fake API.
func TestRunWritesFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleInventory))
	}))
	defer srv.Close()

	outputFile := filepath.Join(t.TempDir(), "devices.json")

	err := Run(context.Background(), &Options{
		APIURL:     srv.URL,
		OutputFile: outputFile,
	})
	require.NoError(t, err)

	devices, err := Load(outputFile)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	// Indented output, readable over ssh.
	contents, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	require.Contains(t, string(contents), "\n  {")
}

// TestLoadMissing yields an empty catalog for a fresh install.
func TestLoadMissing(t *testing.T) {
	t.Parallel()

	devices, err := Load(filepath.Join(t.TempDir(), "devices.json"))
	require.NoError(t, err)
	require.Empty(t, devices)
}

// TestFetchBadStatus propagates API failures.
func TestFetchBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, errBadCatalogStatus)
}
