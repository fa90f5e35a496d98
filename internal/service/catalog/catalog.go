package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/osadchiy/routerdesk/internal/config"
	"github.com/osadchiy/routerdesk/internal/logger"
)

// Device is one processed catalog entry.
type Device struct {
	// Title is the human-readable device name.
	Title string `json:"title"`
	// Target is the OpenWrt build target, e.g. "ath79/generic".
	Target string `json:"target"`
	// Profile is the device profile ID used by the imagebuilder.
	Profile string `json:"profile"`
	// Version is the latest stable release available for the device.
	Version string `json:"version"`
	// Arch is the target prefix, e.g. "ath79".
	Arch string `json:"arch"`
}

// apiDevice mirrors the firmware selector API device shape, limited to the
// fields the catalog cares about.
type apiDevice struct {
	Title             string            `json:"title"`
	Target            string            `json:"target"`
	Images            []json.RawMessage `json:"images"`
	SupportedReleases map[string]string `json:"supported_releases"`
}

// apiResponse is the top-level firmware selector API document.
type apiResponse struct {
	Devices map[string]apiDevice `json:"devices"`
}

// Options are inputs accepted by the catalog entry point.
type Options struct {
	// APIURL is the firmware selector devices endpoint.
	APIURL string
	// OutputFile is where the processed list is written.
	OutputFile string
}

// errBadCatalogStatus is returned on a non-200 API response.
var errBadCatalogStatus = errors.New("unexpected catalog http status")

// Run fetches, processes and writes the device catalog.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "catalog")

	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = config.DefaultCatalogAPIURL
	}

	outputFile := opts.OutputFile
	if outputFile == "" {
		outputFile = config.DefaultCatalogOutput
	}

	logger.InfoKV(ctx, "Fetching device list", "url", apiURL)

	response, err := Fetch(ctx, apiURL)
	if err != nil {
		return fmt.Errorf("fetch device list: %w", err)
	}

	devices := Process(response)

	logger.InfoKV(ctx, "Processed device list", "devices", len(devices))

	if err := Write(outputFile, devices); err != nil {
		return fmt.Errorf("write device list: %w", err)
	}

	logger.InfoKV(ctx, "Device list saved", "path", outputFile)

	return nil
}

// Fetch downloads and decodes the firmware selector device inventory.
func Fetch(ctx context.Context, apiURL string) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s: %w", apiURL, resp.Status, errBadCatalogStatus)
	}

	contents, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}

	var response apiResponse
	if err := json.Unmarshal(contents, &response); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return &response, nil
}

// Process filters and flattens the API inventory:
// devices without images or without a stable release are dropped, the
// architecture is the target prefix, and the result is sorted by title.
func Process(response *apiResponse) []Device {
	if response == nil {
		return nil
	}

	devices := make([]Device, 0, len(response.Devices))

	for profileID, details := range response.Devices {
		if len(details.Images) == 0 {
			continue
		}

		stable := details.SupportedReleases["stable"]
		if stable == "" {
			continue
		}

		arch := details.Target
		if idx := strings.Index(details.Target, "/"); idx >= 0 {
			arch = details.Target[:idx]
		}

		title := details.Title
		if title == "" {
			title = "Unknown Device"
		}

		devices = append(devices, Device{
			Title:   title,
			Target:  details.Target,
			Profile: profileID,
			Version: stable,
			Arch:    arch,
		})
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Title < devices[j].Title
	})

	return devices
}

// Write saves the processed list as indented JSON.
func Write(path string, devices []Device) error {
	data, err := json.MarshalIndent(devices, "", "  ")
	if err != nil {
		return fmt.Errorf("encode devices: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, 0o644); err != nil { //nolint:gosec // Published artifact.
		return fmt.Errorf("write devices: %w", err)
	}

	return nil
}

// Load reads a previously written device list; a missing file yields an
// empty list so the daemon can serve an install that never refreshed.
func Load(path string) ([]Device, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read devices: %w", err)
	}

	var devices []Device
	if err := json.Unmarshal(contents, &devices); err != nil {
		return nil, fmt.Errorf("decode devices: %w", err)
	}

	return devices, nil
}
