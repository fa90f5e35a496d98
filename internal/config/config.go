package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the routerdesk binaries.
type Config struct {
	// ListenAddress is the address the console daemon binds its HTTP server to.
	ListenAddress string `yaml:"listen_addr"`
	// ConsoleAddress is where the operator CLI reaches the console. When
	// empty, the port is taken from ListenAddress on localhost.
	ConsoleAddress string `yaml:"console_addr"`
	// ProfileURL is the remote JSON profile location (fallback script, extra actions).
	ProfileURL string `yaml:"profile_url"`
	// ServerUpdateFolder is the URL where update artifacts are hosted.
	ServerUpdateFolder string `yaml:"update_folder"`
	// LockFile is the advisory lock guarding administrative actions.
	LockFile string `yaml:"lock_file"`
	// ActionLogFile is the append-only log administrative actions write to.
	ActionLogFile string `yaml:"action_log"`
	// HistoryFile is the JSON file storing recent run records.
	HistoryFile string `yaml:"history_file"`
	// LogLevel is the zap level name for all binaries reading this file.
	LogLevel string `yaml:"log_level"`
	// Timeout is the duration for network operations and API calls.
	Timeout time.Duration `yaml:"timeout"`
	// Terminal configures the web terminal supervised by the daemon.
	Terminal Terminal `yaml:"terminal"`
	// Catalog configures the device catalog refresh.
	Catalog Catalog `yaml:"catalog"`
	// Schedule configures the daemon's periodic jobs.
	Schedule Schedule `yaml:"schedule"`
	// UpdateType is set at runtime by the updater to pick a role-specific
	// file set from the update manifest. It is not persisted to YAML.
	UpdateType string `yaml:"-"`
}

// Terminal configures the ttyd process serving the dashboard terminal.
type Terminal struct {
	// Port is the TCP port ttyd listens on.
	Port int `yaml:"port"`
	// Command is the ttyd executable name or path.
	Command string `yaml:"command"`
	// Shell is the command ttyd runs for each session.
	Shell string `yaml:"shell"`
}

// Catalog configures the OpenWrt device catalog processing.
type Catalog struct {
	// APIURL is the firmware selector devices endpoint.
	APIURL string `yaml:"api_url"`
	// OutputFile is where the processed device list is written.
	OutputFile string `yaml:"output_file"`
}

// Schedule configures periodic daemon jobs.
type Schedule struct {
	// ProfileRefresh is the interval between remote profile fetches.
	ProfileRefresh time.Duration `yaml:"profile_refresh"`
	// UpdateCheck is the interval between update manifest checks.
	UpdateCheck time.Duration `yaml:"update_check"`
}

const (
	// DefaultConfigFilename is the default filename for routerdesk settings.
	DefaultConfigFilename = "routerdesk-settings.yaml"

	// DefaultLockFilename is the default advisory lock file path.
	DefaultLockFilename = "routerdesk.lock"

	// DefaultActionLogFilename is the default append-only action log path.
	DefaultActionLogFilename = "routerdesk-actions.log"

	// DefaultHistoryFilename is the default run history JSON path.
	DefaultHistoryFilename = "routerdesk-history.json"

	// DefaultListenAddress is where the daemon serves its API and dashboard.
	DefaultListenAddress = ":8036"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 10 * time.Second

	// DefaultTerminalPort is the default ttyd port.
	DefaultTerminalPort = 7681

	// DefaultTerminalCommand is the default web terminal executable.
	DefaultTerminalCommand = "ttyd"

	// DefaultTerminalShell is the default session command for the web terminal.
	DefaultTerminalShell = "login"

	// DefaultCatalogAPIURL is the OpenWrt firmware selector devices endpoint.
	DefaultCatalogAPIURL = "https://sysupgrade.openwrt.org/api/v1/devices"

	// DefaultCatalogOutput is the default processed device list path.
	DefaultCatalogOutput = "devices.json"

	// DefaultProfileRefresh is the default remote profile refresh interval.
	DefaultProfileRefresh = 15 * time.Minute

	// DefaultUpdateCheck is the default update check interval.
	DefaultUpdateCheck = 6 * time.Hour

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errListenAddressRequired is returned when the listen address is missing.
	errListenAddressRequired = errors.New("listen address must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling defaults for everything optional.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ListenAddress == "" {
		return errListenAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.LockFile == "" {
		cfg.LockFile = DefaultLockFilename
	}

	if cfg.ActionLogFile == "" {
		cfg.ActionLogFile = DefaultActionLogFilename
	}

	if cfg.HistoryFile == "" {
		cfg.HistoryFile = DefaultHistoryFilename
	}

	if cfg.Terminal.Port <= 0 {
		cfg.Terminal.Port = DefaultTerminalPort
	}

	if cfg.Terminal.Command == "" {
		cfg.Terminal.Command = DefaultTerminalCommand
	}

	if cfg.Terminal.Shell == "" {
		cfg.Terminal.Shell = DefaultTerminalShell
	}

	if cfg.Catalog.APIURL == "" {
		cfg.Catalog.APIURL = DefaultCatalogAPIURL
	}

	if cfg.Catalog.OutputFile == "" {
		cfg.Catalog.OutputFile = DefaultCatalogOutput
	}

	if cfg.Schedule.ProfileRefresh <= 0 {
		cfg.Schedule.ProfileRefresh = DefaultProfileRefresh
	}

	if cfg.Schedule.UpdateCheck <= 0 {
		cfg.Schedule.UpdateCheck = DefaultUpdateCheck
	}

	for name, value := range map[string]string{
		"profile URL":       cfg.ProfileURL,
		"update folder URI": cfg.ServerUpdateFolder,
		"catalog API URL":   cfg.Catalog.APIURL,
	} {
		if value == "" {
			continue
		}

		if _, err := url.ParseRequestURI(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	return nil
}
