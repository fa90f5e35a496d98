package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/osadchiy/routerdesk/internal/config"
	"github.com/osadchiy/routerdesk/internal/service/console"
	"github.com/osadchiy/routerdesk/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for running the admin console daemon.
	rootCmd = &cobra.Command{
		Use:   "routerdesk-daemon [listen-address]",
		Short: "Run the router admin console daemon.",
		Long: `Starts the admin console: the JSON API, the polling dashboard, the web
terminal supervisor and the lock-serialized action runner.

The daemon listens on the configured address; an optional argument overrides
it (e.g. :9090, 0.0.0.0:8036). Run history is persisted to JSON for recovery
across restarts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &console.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
			}

			return console.Run(ctx, options)
		},
	}
)

// Execute runs the routerdesk-daemon CLI and exits with non-zero status on error.
func Execute() {
	// Environment overrides may live next to the binary.
	_ = godotenv.Load()

	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
