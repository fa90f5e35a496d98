package statusdoc

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSummary() *Summary {
	return &Summary{
		Project:    "archer-c7-fleet",
		Version:    "23.05.3",
		Target:     "ath79/generic",
		Profile:    "tplink_archer-c7-v5",
		Status:     "success",
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
		Artifacts:  []string{"openwrt-sysupgrade.bin"},
	}
}

func TestRunRendersAndUploads(t *testing.T) {
	t.Parallel()

	outputDir := filepath.Join(t.TempDir(), "status")

	var out bytes.Buffer

	err := Run(context.Background(), &Options{
		Summary:     testSummary(),
		OutputDir:   outputDir,
		Destination: "gs://ci-status/firmware/",
		// "true" swallows its arguments; the real default shells out to gcloud.
		CommandTemplate: "true {src} {dst}",
		Output:          &out,
	})
	require.NoError(t, err)

	markdown, err := os.ReadFile(filepath.Join(outputDir, "status.md"))
	require.NoError(t, err)
	require.Contains(t, string(markdown), "# Firmware build: archer-c7-fleet")
	require.Contains(t, string(markdown), "**Status:** success")
	require.Contains(t, string(markdown), "openwrt-sysupgrade.bin")

	raw, err := os.ReadFile(filepath.Join(outputDir, "status.json"))
	require.NoError(t, err)

	var decoded Summary
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "23.05.3", decoded.Version)
}

func TestRunFailingUploadFails(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		Summary:         testSummary(),
		OutputDir:       filepath.Join(t.TempDir(), "status"),
		Destination:     "gs://ci-status/firmware/",
		CommandTemplate: "false {src} {dst}",
		Output:          &bytes.Buffer{},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "upload")
}

func TestRunValidation(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{Destination: "gs://x/"})
	require.ErrorIs(t, err, errSummaryRequired)

	err = Run(context.Background(), &Options{Summary: testSummary()})
	require.ErrorIs(t, err, errDestinationRequired)
}

func TestUploadCommandTemplate(t *testing.T) {
	t.Parallel()

	command, err := uploadCommand(DefaultCommandTemplate, "status/status.md", "gs://bucket/doc/")
	require.NoError(t, err)
	require.Equal(t, "gcloud", command.Name)
	require.Equal(t, []string{"storage", "cp", "status/status.md", "gs://bucket/doc/"}, command.Args)
}
