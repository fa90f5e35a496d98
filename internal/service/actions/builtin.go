package actions

import (
	"errors"
	"fmt"

	"github.com/osadchiy/routerdesk/internal/execx"
)

// defaultFirmwareImage is where fetched firmware lands before flashing.
const defaultFirmwareImage = "/tmp/firmware.bin"

var errFirmwareURLRequired = errors.New("firmware-fetch requires an image URL argument")

// builtinPlanner produces the command sequence for one builtin action.
type builtinPlanner func(args []string) ([]execx.Command, error)

// builtins maps action names to their command plans. Each plan is the same
// tool invocation an operator would type over ssh.
//
//nolint:gochecknoglobals // Static dispatch table, written once at init.
var builtins = map[string]builtinPlanner{
	"packages-update": func(_ []string) ([]execx.Command, error) {
		return []execx.Command{
			{Name: "opkg", Args: []string{"update"}},
		}, nil
	},
	"packages-upgrade": func(_ []string) ([]execx.Command, error) {
		return []execx.Command{
			{Name: "opkg", Args: []string{"update"}},
			// opkg has no "upgrade all" verb; this is the stock pipeline.
			{Name: "sh", Args: []string{"-c", "opkg list-upgradable | cut -f 1 -d ' ' | xargs -r opkg upgrade"}},
		}, nil
	},
	"wifi-restart": func(_ []string) ([]execx.Command, error) {
		return []execx.Command{
			{Name: "wifi", Args: []string{"reload"}},
		}, nil
	},
	"net-apply": func(_ []string) ([]execx.Command, error) {
		return []execx.Command{
			{Name: "uci", Args: []string{"commit"}},
			{Name: "reload_config"},
		}, nil
	},
	"sysctl-apply": func(_ []string) ([]execx.Command, error) {
		return []execx.Command{
			{Name: "sysctl", Args: []string{"-p"}},
		}, nil
	},
	"firmware-fetch": func(args []string) ([]execx.Command, error) {
		if len(args) < 1 || args[0] == "" {
			return nil, errFirmwareURLRequired
		}

		return []execx.Command{
			{Name: "wget", Args: []string{"-O", defaultFirmwareImage, args[0]}},
		}, nil
	},
	"firmware-flash": func(args []string) ([]execx.Command, error) {
		image := defaultFirmwareImage
		if len(args) > 0 && args[0] != "" {
			image = args[0]
		}

		return []execx.Command{
			{Name: "sysupgrade", Args: []string{"-v", image}},
		}, nil
	},
	"reboot": func(_ []string) ([]execx.Command, error) {
		return []execx.Command{
			{Name: "reboot"},
		}, nil
	},
}

// planBuiltin resolves a builtin action, reporting whether the name exists.
func planBuiltin(name string, args []string) ([]execx.Command, bool, error) {
	planner, ok := builtins[name]
	if !ok {
		return nil, false, nil
	}

	commands, err := planner(args)
	if err != nil {
		return nil, true, fmt.Errorf("plan %s: %w", name, err)
	}

	return commands, true, nil
}
