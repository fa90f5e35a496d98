package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/osadchiy/routerdesk/internal/config"
	"github.com/osadchiy/routerdesk/internal/service/operator"
	"github.com/osadchiy/routerdesk/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// consoleAddress optionally overrides where the console is reached.
	consoleAddress string
	// watch keeps the status command polling until interrupted.
	watch bool

	// rootCmd represents the base command for the operator CLI.
	rootCmd = &cobra.Command{
		Use:   "routerdesk",
		Short: "Operate the router admin console from the command line.",
	}

	runCmd = &cobra.Command{
		Use:   "run <action> [args...]",
		Short: "Trigger an administrative action on the router.",
		Long: `Triggers the named action on the console daemon. Actions run one at a
time; if another action is in progress the console refuses and this command
exits non-zero with the daemon's error message.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			return operator.RunAction(ctx, operatorOptions(), args[0], args[1:])
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the console status, optionally polling with --watch.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			return operator.RunStatus(ctx, operatorOptions())
		},
	}

	terminalCmd = &cobra.Command{
		Use:   "terminal",
		Short: "Print the web terminal URL.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			return operator.RunTerminal(ctx, operatorOptions())
		},
	}

	devicesCmd = &cobra.Command{
		Use:   "devices",
		Short: "List supported devices known to the console.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			return operator.RunDevices(ctx, operatorOptions())
		},
	}
)

// commandContext sets up graceful shutdown handling for one CLI invocation.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// operatorOptions collects the shared flags for the operator commands.
func operatorOptions() *operator.Options {
	return &operator.Options{
		ConfigPath:     configPath,
		ConsoleAddress: consoleAddress,
		Watch:          watch,
	}
}

// Execute runs the routerdesk CLI and exits with non-zero status on error.
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
	rootCmd.PersistentFlags().
		StringVarP(&consoleAddress, "console", "a", "", "console address (host:port), overrides config")

	statusCmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep polling until interrupted")

	rootCmd.AddCommand(runCmd, statusCmd, terminalCmd, devicesCmd)
}
