package console

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/osadchiy/routerdesk/internal/actionlog"
	httpapi "github.com/osadchiy/routerdesk/internal/api/http"
	"github.com/osadchiy/routerdesk/internal/config"
	"github.com/osadchiy/routerdesk/internal/logger"
	"github.com/osadchiy/routerdesk/internal/metrics"
	repository "github.com/osadchiy/routerdesk/internal/repository/runhistory"
	"github.com/osadchiy/routerdesk/internal/service/actions"
	"github.com/osadchiy/routerdesk/internal/service/runner"
	"github.com/osadchiy/routerdesk/internal/service/terminal"
)

// Options controls the routerdesk-daemon process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the HTTP server.
	ListenAddress string
}

// shutdownTimeout bounds the graceful HTTP shutdown on signal.
const shutdownTimeout = 10 * time.Second

// readHeaderTimeout protects the daemon from slowloris-style clients.
const readHeaderTimeout = 10 * time.Second

// Run starts the console daemon and blocks until the context is canceled or
// the server stops. Loads configuration first, then wires the runner, the
// terminal supervisor, the scheduler and the HTTP server together.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "routerdesk-daemon")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	listenAddress := settings.ListenAddress
	if opts.ListenAddress != "" {
		listenAddress = opts.ListenAddress
	}

	promRegistry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheus(promRegistry)
	registry := actions.NewRegistry()

	runnerService, err := runner.NewService(
		ctx,
		settings.LockFile,
		actionlog.New(settings.ActionLogFile),
		repository.NewFileRepository(settings.HistoryFile),
		registry,
		runner.WithRecorder(recorder),
	)
	if err != nil {
		return fmt.Errorf("initialise runner: %w", err)
	}

	// The web terminal is best effort: a missing ttyd must not keep the
	// console from serving the dashboard.
	terminalSupervisor := terminal.NewSupervisor(settings.Terminal)
	if _, err := terminalSupervisor.Ensure(ctx); err != nil {
		logger.WarnKV(ctx, "Web terminal unavailable", "error", err)
	}

	defer terminalSupervisor.Stop()

	d := newDaemon(settings, registry, recorder)
	d.refreshProfile(ctx)

	jobs, err := newScheduler(ctx, d, settings.Schedule)
	if err != nil {
		return fmt.Errorf("initialise scheduler: %w", err)
	}

	jobs.Start(ctx)
	defer jobs.Stop(ctx)

	// Reload log level and profile wiring when the settings file changes.
	go func() {
		if err := config.Watch(ctx, opts.ConfigPath, func(cfg *config.Config) {
			d.applySettings(ctx, cfg)
		}); err != nil {
			logger.ErrorKV(ctx, "Settings watcher stopped", "error", err)
		}
	}()

	apiServer := httpapi.NewServer(ctx, &httpapi.Options{
		Runner:      runnerService,
		Terminal:    terminalSupervisor,
		ActionNames: registry.Names,
		Profile:     d.currentProfile,
		CatalogPath: settings.Catalog.OutputFile,
		Registry:    promRegistry,
	})

	httpServer := &http.Server{
		Addr:              listenAddress,
		Handler:           apiServer.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.InfoKV(ctx, "Console listening",
		"listen_address", listenAddress,
		"lock_file", settings.LockFile,
		"action_log", settings.ActionLogFile)

	// Done channel is closed after Shutdown finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorKV(ctx, "Failed to shut down HTTP server", "error", err)
		}

		close(done)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	logger.Info(ctx, "Console stopped")

	return nil
}
