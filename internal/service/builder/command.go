package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/osadchiy/routerdesk/internal/execx"
	"github.com/osadchiy/routerdesk/internal/logger"
	"github.com/osadchiy/routerdesk/internal/service/statusdoc"
)

// Options are inputs accepted by the builder entry point.
type Options struct {
	// PlanPath is the build plan YAML file.
	PlanPath string
	// DryRun prints the command plan without executing anything.
	DryRun bool
	// SkipPublish builds the image but leaves the artifacts local.
	SkipPublish bool
	// StatusDoc optionally publishes a build summary after the pipeline.
	StatusDoc *statusdoc.Options
	// Output receives command output; defaults to stdout.
	Output io.Writer
}

// step is one pipeline stage: either an external command or a Go function.
type step struct {
	// desc is the dry-run and log line for this stage.
	desc string
	// command is the external invocation, nil for Go-implemented stages.
	command *execx.Command
	// fn runs Go-implemented stages (the download).
	fn func(ctx context.Context) error
}

var errBadHTTPStatus = errors.New("unexpected http status")

// Run executes the firmware pipeline described by the plan.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "routerdesk-builder")

	plan, err := LoadPlan(opts.PlanPath)
	if err != nil {
		return err
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	steps := pipeline(plan, opts, out)

	if opts.DryRun {
		for _, s := range steps {
			fmt.Fprintln(out, s.desc)
		}

		return nil
	}

	logger.InfoKV(ctx, "Building firmware",
		"version", plan.Version, "target", plan.Target, "profile", plan.Profile)

	startedAt := time.Now()

	for _, s := range steps {
		logger.InfoKV(ctx, "Pipeline step", "step", s.desc)

		if s.fn != nil {
			if err := s.fn(ctx); err != nil {
				return fmt.Errorf("%s: %w", s.desc, err)
			}

			continue
		}

		if _, err := execx.Run(ctx, *s.command, out); err != nil {
			return fmt.Errorf("%s: %w", s.desc, err)
		}
	}

	if opts.StatusDoc != nil {
		if opts.StatusDoc.Summary == nil {
			opts.StatusDoc.Summary = &statusdoc.Summary{
				Project:    plan.Profile,
				Version:    plan.Version,
				Target:     plan.Target,
				Profile:    plan.Profile,
				Status:     "success",
				StartedAt:  startedAt,
				FinishedAt: time.Now(),
			}
		}

		if err := statusdoc.Run(ctx, opts.StatusDoc); err != nil {
			return fmt.Errorf("publish status document: %w", err)
		}
	}

	logger.InfoKV(ctx, "Firmware built", "output", plan.OutputDir())

	return nil
}

// pipeline assembles the ordered stage list for a plan.
func pipeline(plan *Plan, opts *Options, out io.Writer) []step {
	archivePath := filepath.Join(plan.Workdir, plan.ArchiveName())

	steps := []step{
		{
			desc: fmt.Sprintf("prepare workdir %s", plan.Workdir),
			fn: func(context.Context) error {
				return os.MkdirAll(plan.Workdir, 0o755)
			},
		},
		{
			desc: fmt.Sprintf("download %s -> %s", plan.DownloadURL(), archivePath),
			fn: func(ctx context.Context) error {
				return downloadArchive(ctx, plan.DownloadURL(), archivePath, out)
			},
		},
		{
			desc: fmt.Sprintf("tar -xf %s -C %s", archivePath, plan.Workdir),
			command: &execx.Command{
				Name: "tar",
				Args: []string{"-xf", archivePath, "-C", plan.Workdir},
			},
		},
		{
			desc:    "make image",
			command: makeImageCommand(plan),
		},
		{
			desc: "verify sha256sums",
			command: &execx.Command{
				Name: "sha256sum",
				Args: []string{"--check", "--ignore-missing", "sha256sums"},
				Dir:  plan.OutputDir(),
			},
		},
	}

	if plan.Publish != "" && !opts.SkipPublish {
		steps = append(steps, step{
			desc: fmt.Sprintf("rsync artifacts to %s", plan.Publish),
			command: &execx.Command{
				Name: "rsync",
				Args: []string{"-a", "--delete", plan.OutputDir() + "/", plan.Publish},
			},
		})
	}

	return steps
}

// makeImageCommand builds the make invocation inside the unpacked builder.
func makeImageCommand(plan *Plan) *execx.Command {
	args := []string{"image", "PROFILE=" + plan.Profile}

	if len(plan.Packages) > 0 {
		args = append(args, "PACKAGES="+strings.Join(plan.Packages, " "))
	}

	if plan.FilesOverlay != "" {
		overlay, err := filepath.Abs(plan.FilesOverlay)
		if err != nil {
			overlay = plan.FilesOverlay
		}

		args = append(args, "FILES="+overlay)
	}

	return &execx.Command{
		Name: "make",
		Args: args,
		Dir:  plan.BuilderDir(),
	}
}

// downloadArchive fetches the image builder tarball unless it is already
// present from a previous run.
func downloadArchive(ctx context.Context, rawURL, destination string, out io.Writer) error {
	if _, err := os.Stat(destination); err == nil {
		fmt.Fprintf(out, "%s already downloaded, skipping\n", destination)

		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download image builder: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s: %w", rawURL, resp.Status, errBadHTTPStatus)
	}

	// Download to a temp name so an interrupted transfer is never mistaken
	// for a complete archive.
	partial := destination + ".part"

	file, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("create %s: %w", partial, err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		_ = os.Remove(partial)

		return fmt.Errorf("write %s: %w", partial, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", partial, err)
	}

	return os.Rename(partial, destination)
}
