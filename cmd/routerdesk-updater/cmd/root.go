package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/osadchiy/routerdesk/internal/config"
	"github.com/osadchiy/routerdesk/internal/service/packager"
	"github.com/osadchiy/routerdesk/internal/service/updater"
	"github.com/osadchiy/routerdesk/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// channel optionally selects a manifest subfolder in the update folder.
	channel string
	// updateFolder is where packaged releases are uploaded.
	updateFolder string
	// listenAddress is baked into the settings shipped with a release.
	listenAddress string

	// rootCmd represents the base command for update management.
	rootCmd = &cobra.Command{
		Use:   "routerdesk-updater",
		Short: "Download, apply and package routerdesk updates.",
	}

	runCmd = &cobra.Command{
		Use:       "run [router|operator]",
		Short:     "Download and apply updates for a role.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{updater.RoleRouter, updater.RoleOperator},
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &updater.Options{
				ConfigPath: configPath,
				UpdateType: args[0],
				Channel:    channel,
			}

			return updater.Run(ctx, options)
		},
	}

	packageCmd = &cobra.Command{
		Use:   "package",
		Short: "Compute release checksums and write the update manifest.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &packager.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				UpdateFolder:  updateFolder,
			}

			return packager.Run(ctx, options)
		},
	}
)

// Execute runs the routerdesk-updater CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")

	runCmd.Flags().StringVar(&channel, "channel", "", "manifest subfolder to update from")

	packageCmd.Flags().StringVarP(&updateFolder, "update-folder", "u", "", "URL where release files are uploaded")
	packageCmd.Flags().StringVar(&listenAddress, "listen-addr", "", "console listen address for the shipped settings")
	_ = packageCmd.MarkFlagRequired("update-folder")

	rootCmd.AddCommand(runCmd, packageCmd)
}
