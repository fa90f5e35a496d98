package console

import (
	"context"
	"sync"

	"github.com/osadchiy/routerdesk/internal/config"
	"github.com/osadchiy/routerdesk/internal/logger"
	"github.com/osadchiy/routerdesk/internal/metrics"
	"github.com/osadchiy/routerdesk/internal/service/actions"
	"github.com/osadchiy/routerdesk/internal/service/updater"
)

// daemon holds the mutable state shared between the HTTP server, the
// scheduler jobs and the settings watcher.
type daemon struct {
	// registry resolves action names; profile refreshes feed it.
	registry *actions.Registry
	// recorder receives profile refresh outcomes.
	recorder metrics.Recorder

	// mu protects settings and profile.
	mu sync.RWMutex
	// settings is the latest validated configuration.
	settings *config.Config
	// profile is the last successfully fetched remote profile, nil until then.
	profile *config.Profile
}

// newDaemon creates the shared daemon state.
func newDaemon(settings *config.Config, registry *actions.Registry, recorder metrics.Recorder) *daemon {
	return &daemon{
		registry: registry,
		recorder: recorder,
		settings: settings,
	}
}

// currentSettings returns the latest configuration.
func (d *daemon) currentSettings() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.settings
}

// currentProfile returns the last fetched profile, nil when never fetched.
func (d *daemon) currentProfile() *config.Profile {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.profile
}

// refreshProfile fetches the remote profile and applies it to the action
// registry. Failures keep the previous profile in effect.
func (d *daemon) refreshProfile(ctx context.Context) {
	settings := d.currentSettings()
	if settings.ProfileURL == "" {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, settings.Timeout)
	defer cancel()

	profile, err := config.FetchProfile(fetchCtx, settings.ProfileURL)
	if err != nil {
		d.recorder.ProfileRefreshed(false)
		logger.WarnKV(ctx, "Profile refresh failed", "url", settings.ProfileURL, "error", err)

		return
	}

	d.registry.ApplyProfile(profile)

	d.mu.Lock()
	d.profile = profile
	d.mu.Unlock()

	d.recorder.ProfileRefreshed(true)
	logger.InfoKV(ctx, "Profile refreshed",
		"url", settings.ProfileURL, "actions", len(profile.Actions))
}

// checkUpdates looks at the published manifest and logs when a newer release
// is available. Applying it stays an operator decision.
func (d *daemon) checkUpdates(ctx context.Context) {
	settings := d.currentSettings()
	if settings.ServerUpdateFolder == "" {
		return
	}

	channel := ""
	if profile := d.currentProfile(); profile != nil {
		channel = profile.UpdateChannel
	}

	available, remoteVersion, err := updater.CheckForUpdate(ctx, settings, channel)
	if err != nil {
		logger.WarnKV(ctx, "Update check failed", "error", err)

		return
	}

	if available {
		logger.InfoKV(ctx, "Update available", "remote_version", remoteVersion)
	}
}

// applySettings installs a freshly reloaded configuration. Only fields that
// are safe to change without a restart take effect immediately.
func (d *daemon) applySettings(ctx context.Context, settings *config.Config) {
	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	d.mu.Lock()
	d.settings = settings
	d.mu.Unlock()

	// Pick up a changed profile URL right away instead of waiting a cycle.
	d.refreshProfile(ctx)
}
