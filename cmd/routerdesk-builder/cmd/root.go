package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/osadchiy/routerdesk/internal/config"
	"github.com/osadchiy/routerdesk/internal/service/builder"
	"github.com/osadchiy/routerdesk/internal/service/catalog"
	"github.com/osadchiy/routerdesk/internal/service/statusdoc"
	"github.com/osadchiy/routerdesk/internal/version"
)

var (
	// planPath to the build plan YAML file.
	planPath string
	// dryRun prints the command plan without executing anything.
	dryRun bool
	// skipPublish builds the image but leaves the artifacts local.
	skipPublish bool
	// statusDestination publishes a status document after the build when set.
	statusDestination string
	// statusTemplate overrides the upload command template.
	statusTemplate string

	// apiURL is the firmware selector devices endpoint for the catalog command.
	apiURL string
	// outputFile is where the processed device list is written.
	outputFile string

	// summary flags for the standalone status command.
	statusProject string
	statusStatus  string
	statusNotes   string

	// rootCmd represents the base command for the firmware build pipeline.
	rootCmd = &cobra.Command{
		Use:   "routerdesk-builder",
		Short: "Build, publish and document router firmware images.",
	}

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Run the firmware pipeline described by a build plan.",
		Long: `Downloads the OpenWrt image builder for the plan's release and target,
runs make image with the plan's profile and package list, verifies the
sha256sums and publishes the artifacts with rsync. With --dry-run the
command plan is printed instead of executed.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			options := &builder.Options{
				PlanPath:    planPath,
				DryRun:      dryRun,
				SkipPublish: skipPublish,
			}

			if statusDestination != "" {
				options.StatusDoc = &statusdoc.Options{
					Destination:     statusDestination,
					CommandTemplate: statusTemplate,
				}
			}

			return builder.Run(ctx, options)
		},
	}

	catalogCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Refresh the supported device catalog.",
		Long: `Fetches the firmware selector device list, keeps devices with images and
a stable release, and writes the processed catalog the console serves to
the dashboard.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			return catalog.Run(ctx, &catalog.Options{
				APIURL:     apiURL,
				OutputFile: outputFile,
			})
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Publish a standalone CI status document.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			now := time.Now()

			return statusdoc.Run(ctx, &statusdoc.Options{
				Summary: &statusdoc.Summary{
					Project:    statusProject,
					Status:     statusStatus,
					StartedAt:  now,
					FinishedAt: now,
					Notes:      statusNotes,
				},
				Destination:     statusDestination,
				CommandTemplate: statusTemplate,
			})
		},
	}
)

// commandContext sets up graceful shutdown handling for one CLI invocation.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// Execute runs the routerdesk-builder CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	buildCmd.Flags().StringVarP(&planPath, "plan", "p", "plan.yaml", "path to build plan file")
	buildCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the command plan without executing")
	buildCmd.Flags().BoolVar(&skipPublish, "skip-publish", false, "build but do not rsync artifacts")
	buildCmd.Flags().StringVar(&statusDestination, "status-dest", "", "publish a status document to this destination")
	buildCmd.Flags().StringVar(&statusTemplate, "status-template", "", "upload command template for the status document")

	catalogCmd.Flags().StringVar(&apiURL, "api-url", config.DefaultCatalogAPIURL, "firmware selector devices endpoint")
	catalogCmd.Flags().StringVarP(&outputFile, "output", "o", config.DefaultCatalogOutput, "processed device list path")

	statusCmd.Flags().StringVar(&statusProject, "project", "firmware", "project name in the document")
	statusCmd.Flags().StringVar(&statusStatus, "result", "success", "build result to publish (success or failure)")
	statusCmd.Flags().StringVar(&statusNotes, "notes", "", "free-form notes for the document")
	statusCmd.Flags().StringVar(&statusDestination, "status-dest", "", "destination to publish to")
	statusCmd.Flags().StringVar(&statusTemplate, "status-template", "", "upload command template")
	_ = statusCmd.MarkFlagRequired("status-dest")

	rootCmd.AddCommand(buildCmd, catalogCmd, statusCmd)
}
