package statusdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/osadchiy/routerdesk/internal/execx"
	"github.com/osadchiy/routerdesk/internal/logger"
)

// Summary is the build outcome published to the status document.
type Summary struct {
	// Project names the build, e.g. "archer-c7-fleet".
	Project string `json:"project"`
	// Version is the OpenWrt release that was built.
	Version string `json:"version"`
	// Target is the build target.
	Target string `json:"target"`
	// Profile is the device profile.
	Profile string `json:"profile"`
	// Status is "success" or "failure".
	Status string `json:"status"`
	// StartedAt and FinishedAt bound the build.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	// Artifacts lists the published firmware files.
	Artifacts []string `json:"artifacts,omitempty"`
	// Notes carries free-form context, e.g. the failing step.
	Notes string `json:"notes,omitempty"`
}

// Options are inputs accepted by the status document publisher.
type Options struct {
	// Summary is the build outcome to publish.
	Summary *Summary
	// OutputDir is where the rendered files are written.
	OutputDir string
	// Destination is the upload target, e.g. "gs://ci-status/firmware/".
	Destination string
	// CommandTemplate is the upload invocation; {src} and {dst} are
	// substituted per rendered file.
	CommandTemplate string
	// Output receives upload command output; defaults to stdout.
	Output io.Writer
}

// DefaultCommandTemplate uploads with the gcloud CLI.
const DefaultCommandTemplate = "gcloud storage cp {src} {dst}"

const (
	markdownFilename = "status.md"
	jsonFilename     = "status.json"
)

var (
	errSummaryRequired     = errors.New("summary must be provided")
	errDestinationRequired = errors.New("destination must be provided")
	errEmptyTemplate       = errors.New("empty command template")
)

// Run renders the summary and uploads both documents. A failing upload
// command fails the run, so CI steps propagate the exit status.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "routerdesk-statusdoc")

	if opts.Summary == nil {
		return errSummaryRequired
	}

	if opts.Destination == "" {
		return errDestinationRequired
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "status"
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("prepare output dir: %w", err)
	}

	files, err := render(opts.Summary, outputDir)
	if err != nil {
		return err
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	template := opts.CommandTemplate
	if template == "" {
		template = DefaultCommandTemplate
	}

	for _, file := range files {
		command, err := uploadCommand(template, file, opts.Destination)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Publishing status document", "command", command.String())

		if _, err := execx.Run(ctx, command, out); err != nil {
			return fmt.Errorf("upload %s: %w", file, err)
		}
	}

	return nil
}

// render writes the markdown and JSON documents and returns their paths.
func render(summary *Summary, outputDir string) ([]string, error) {
	markdownPath := filepath.Join(outputDir, markdownFilename)
	if err := os.WriteFile(markdownPath, []byte(renderMarkdown(summary)), 0o644); err != nil { //nolint:gosec // Published document.
		return nil, fmt.Errorf("write %s: %w", markdownPath, err)
	}

	contents, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}

	jsonPath := filepath.Join(outputDir, jsonFilename)
	if err := os.WriteFile(jsonPath, append(contents, '\n'), 0o644); err != nil { //nolint:gosec // Published document.
		return nil, fmt.Errorf("write %s: %w", jsonPath, err)
	}

	return []string{markdownPath, jsonPath}, nil
}

// renderMarkdown produces the human-facing half of the status document.
func renderMarkdown(summary *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Firmware build: %s\n\n", summary.Project)
	fmt.Fprintf(&b, "**Status:** %s\n\n", summary.Status)
	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Version | %s |\n", summary.Version)
	fmt.Fprintf(&b, "| Target | %s |\n", summary.Target)
	fmt.Fprintf(&b, "| Profile | %s |\n", summary.Profile)
	fmt.Fprintf(&b, "| Started | %s |\n", summary.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "| Finished | %s |\n", summary.FinishedAt.Format(time.RFC3339))

	if len(summary.Artifacts) > 0 {
		b.WriteString("\n## Artifacts\n\n")

		for _, artifact := range summary.Artifacts {
			fmt.Fprintf(&b, "- %s\n", artifact)
		}
	}

	if summary.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", summary.Notes)
	}

	return b.String()
}

// uploadCommand instantiates the command template for one file.
func uploadCommand(template, src, dst string) (execx.Command, error) {
	fields := strings.Fields(template)
	if len(fields) == 0 {
		return execx.Command{}, errEmptyTemplate
	}

	substituted := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.ReplaceAll(field, "{src}", src)
		field = strings.ReplaceAll(field, "{dst}", dst)
		substituted = append(substituted, field)
	}

	return execx.Command{Name: substituted[0], Args: substituted[1:]}, nil
}
