package builder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plan describes one firmware build: which image builder to use, what goes
// into the image and where the artifacts end up.
type Plan struct {
	// Version is the OpenWrt release, e.g. "23.05.3".
	Version string `yaml:"version"`
	// Target is the build target, e.g. "ath79/generic".
	Target string `yaml:"target"`
	// Profile is the device profile passed to make image.
	Profile string `yaml:"profile"`
	// Packages are added to (or, with a "-" prefix, removed from) the image.
	Packages []string `yaml:"packages"`
	// FilesOverlay is an optional directory copied into the image rootfs.
	FilesOverlay string `yaml:"files_overlay"`
	// Workdir is where the image builder is unpacked and run.
	Workdir string `yaml:"workdir"`
	// Publish is the rsync destination for built artifacts, e.g.
	// "deploy@web01:/var/www/firmware/archer-c7/".
	Publish string `yaml:"publish"`
	// ImagebuilderURL overrides the derived download location.
	ImagebuilderURL string `yaml:"imagebuilder_url"`
}

const downloadsBaseURL = "https://downloads.openwrt.org/releases"

var (
	errPlanVersionRequired = errors.New("plan version must be provided")
	errPlanTargetRequired  = errors.New("plan target must be provided")
	errPlanProfileRequired = errors.New("plan profile must be provided")
	errPlanBadTarget       = errors.New("plan target must look like family/subtarget")
)

// LoadPlan reads and validates a build plan from a YAML file.
func LoadPlan(path string) (*Plan, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	var plan Plan
	if err := yaml.Unmarshal(contents, &plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	return &plan, nil
}

// Validate checks required fields and fills defaults.
func (p *Plan) Validate() error {
	if p.Version == "" {
		return errPlanVersionRequired
	}

	if p.Target == "" {
		return errPlanTargetRequired
	}

	if p.Profile == "" {
		return errPlanProfileRequired
	}

	if strings.Count(p.Target, "/") != 1 {
		return fmt.Errorf("%q: %w", p.Target, errPlanBadTarget)
	}

	if p.Workdir == "" {
		p.Workdir = "build"
	}

	return nil
}

// DownloadURL returns where the image builder archive lives for this plan.
func (p *Plan) DownloadURL() string {
	if p.ImagebuilderURL != "" {
		return p.ImagebuilderURL
	}

	return fmt.Sprintf("%s/%s/targets/%s/%s",
		downloadsBaseURL, p.Version, p.Target, p.ArchiveName())
}

// ArchiveName returns the image builder tarball filename for this plan.
func (p *Plan) ArchiveName() string {
	return fmt.Sprintf("openwrt-imagebuilder-%s-%s.Linux-x86_64.tar.xz",
		p.Version, strings.ReplaceAll(p.Target, "/", "-"))
}

// BuilderDir returns the directory the archive unpacks into, relative to the
// workdir.
func (p *Plan) BuilderDir() string {
	return filepath.Join(p.Workdir, strings.TrimSuffix(p.ArchiveName(), ".tar.xz"))
}

// OutputDir returns where make image leaves the firmware artifacts.
func (p *Plan) OutputDir() string {
	return filepath.Join(p.BuilderDir(), "bin", "targets", filepath.FromSlash(p.Target))
}
