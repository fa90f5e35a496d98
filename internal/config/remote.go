package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Profile is the remote JSON document the daemon fetches on schedule.
// It carries everything the router must not hard-code: the fallback script
// location and action definitions pushed from the fleet side.
type Profile struct {
	// FallbackScriptURL is where unrecognized actions are delegated to.
	FallbackScriptURL string `json:"fallback_script_url"`
	// Actions maps extra action names to their command argument vectors.
	Actions map[string][]string `json:"actions"`
	// UpdateChannel selects the manifest subfolder used by update checks.
	UpdateChannel string `json:"update_channel"`
	// Motd is an optional banner shown on the dashboard.
	Motd string `json:"motd"`

	// Raw is the document exactly as served; kept so the daemon can expose
	// and log what it actually fetched. Not part of the JSON payload.
	Raw []byte `json:"-"`
}

var (
	// errProfileURLRequired is returned when no profile URL is configured.
	errProfileURLRequired = errors.New("profile URL is not configured")
	// errBadProfileStatus is returned on a non-200 profile response.
	errBadProfileStatus = errors.New("unexpected profile http status")
)

// FetchProfile downloads and parses the remote profile.
// The document is taken verbatim; unknown fields are ignored.
func FetchProfile(ctx context.Context, profileURL string) (*Profile, error) {
	if profileURL == "" {
		return nil, errProfileURLRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s: %w", profileURL, resp.Status, errBadProfileStatus)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read profile body: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	profile.Raw = raw

	return &profile, nil
}
