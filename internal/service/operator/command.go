package operator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/osadchiy/routerdesk/internal/api/http/responses"
	"github.com/osadchiy/routerdesk/internal/config"
	"github.com/osadchiy/routerdesk/internal/logger"
	"github.com/osadchiy/routerdesk/internal/service/client"
	"github.com/osadchiy/routerdesk/internal/service/common"
)

// Options controls the operator CLI behaviour and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ConsoleAddress provides an optional console address override.
	ConsoleAddress string
	// Watch keeps the status command polling until interrupted.
	Watch bool
}

// watchInterval is the status polling cadence in watch mode.
const watchInterval = 2 * time.Second

// ErrNoConsoleAddress indicates missing console configuration.
var ErrNoConsoleAddress = errors.New("no console address configured")

// RunAction triggers the named action on the console and reports the outcome.
// A busy console surfaces as an error so the CLI exits non-zero.
func RunAction(ctx context.Context, opts *Options, action string, args []string) error {
	ctx = logger.WithName(ctx, "routerdesk")

	api, err := dial(opts)
	if err != nil {
		return err
	}

	trigger, err := api.Trigger(ctx, action, args)
	if err != nil {
		return err
	}

	if trigger.RunID != "" {
		fmt.Printf("accepted: run %s\n", trigger.RunID)
	} else {
		fmt.Println("accepted")
	}

	return nil
}

// RunStatus prints the console status, once or continuously with --watch.
func RunStatus(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "routerdesk")

	api, err := dial(opts)
	if err != nil {
		return err
	}

	if !opts.Watch {
		status, err := api.Status(ctx)
		if err != nil {
			return err
		}

		printStatus(status)

		return nil
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		status, err := api.Status(ctx)
		if err != nil {
			logger.WarnKV(ctx, "Status poll failed", "error", err)
		} else {
			printStatus(status)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunTerminal prints a browsable URL for the console's web terminal.
func RunTerminal(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "routerdesk")

	api, err := dial(opts)
	if err != nil {
		return err
	}

	terminal, err := api.Terminal(ctx)
	if err != nil {
		return err
	}

	terminalURL, err := api.TerminalURL(terminal)
	if err != nil {
		return err
	}

	fmt.Println(terminalURL)

	if !terminal.Running {
		fmt.Println("warning: terminal process is not running")
	}

	return nil
}

// RunDevices lists the supported devices known to the console.
func RunDevices(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "routerdesk")

	api, err := dial(opts)
	if err != nil {
		return err
	}

	devices, err := api.Devices(ctx)
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		fmt.Println("no devices known; run routerdesk-builder catalog first")

		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tPROFILE\tTARGET\tVERSION")

	for _, device := range devices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", device.Title, device.Profile, device.Target, device.Version)
	}

	return w.Flush()
}

// dial loads settings and builds a console client with the operator's name
// attached for the audit trail.
func dial(opts *Options) (*client.Client, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	address, err := resolveConsoleAddress(settings, opts.ConsoleAddress)
	if err != nil {
		return nil, err
	}

	clientOpts := []client.Option{client.WithCallTimeout(settings.Timeout)}

	if actor, err := common.DetectActor(); err == nil {
		clientOpts = append(clientOpts, client.WithUsername(actor.Username))
	}

	return client.New(address, clientOpts...)
}

// resolveConsoleAddress picks the console address: CLI override, then the
// configured address, then localhost with the daemon's listen port.
func resolveConsoleAddress(settings *config.Config, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if settings.ConsoleAddress != "" {
		return settings.ConsoleAddress, nil
	}

	if settings.ListenAddress == "" {
		return "", ErrNoConsoleAddress
	}

	_, port, err := net.SplitHostPort(settings.ListenAddress)
	if err != nil {
		return "", fmt.Errorf("invalid listen address %q: %w", settings.ListenAddress, err)
	}

	return net.JoinHostPort("127.0.0.1", port), nil
}

// printStatus renders one status snapshot for the CLI.
func printStatus(status *responses.StatusResponse) {
	fmt.Printf("%s  status=%s  version=%s  uptime=%s\n",
		status.Timestamp.Local().Format(time.TimeOnly),
		status.Status,
		status.Version,
		(time.Duration(status.Uptime) * time.Second).String())

	if status.CurrentRun != nil {
		fmt.Printf("  running: %s (run %s)\n", status.CurrentRun.Action, status.CurrentRun.ID)
	}

	if status.LastRun != nil {
		line := fmt.Sprintf("  last: %s -> %s", status.LastRun.Action, status.LastRun.Status)
		if status.LastRun.Error != "" {
			line += " (" + status.LastRun.Error + ")"
		}

		fmt.Println(line)
	}

	if len(status.LogTail) > 0 {
		fmt.Println("  log: " + strings.Join(status.LogTail[max(0, len(status.LogTail)-3):], " | "))
	}
}
