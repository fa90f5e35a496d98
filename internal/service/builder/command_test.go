package builder

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osadchiy/routerdesk/internal/execx"
)

func TestDryRunPrintsPipeline(t *testing.T) {
	t.Parallel()

	path := writePlan(t, `
version: "23.05.3"
target: "ath79/generic"
profile: "tplink_archer-c7-v5"
packages: [luci]
publish: "deploy@web01:/var/www/firmware/"
`)

	var out bytes.Buffer

	err := Run(context.Background(), &Options{PlanPath: path, DryRun: true, Output: &out})
	require.NoError(t, err)

	plan := out.String()
	require.Contains(t, plan, "download https://downloads.openwrt.org/releases/23.05.3")
	require.Contains(t, plan, "tar -xf")
	require.Contains(t, plan, "make image")
	require.Contains(t, plan, "rsync artifacts to deploy@web01:/var/www/firmware/")
}

func TestDryRunSkipPublish(t *testing.T) {
	t.Parallel()

	path := writePlan(t, `
version: "23.05.3"
target: "ath79/generic"
profile: "p"
publish: "deploy@web01:/var/www/firmware/"
`)

	var out bytes.Buffer

	err := Run(context.Background(), &Options{
		PlanPath: path, DryRun: true, SkipPublish: true, Output: &out,
	})
	require.NoError(t, err)
	require.NotContains(t, out.String(), "rsync")
}

func TestMakeImageCommand(t *testing.T) {
	t.Parallel()

	plan := &Plan{
		Version:      "23.05.3",
		Target:       "ath79/generic",
		Profile:      "tplink_archer-c7-v5",
		Packages:     []string{"luci", "-ppp"},
		FilesOverlay: "files",
	}
	require.NoError(t, plan.Validate())

	command := makeImageCommand(plan)
	require.Equal(t, "make", command.Name)
	require.Equal(t, plan.BuilderDir(), command.Dir)
	require.Contains(t, command.Args, "PROFILE=tplink_archer-c7-v5")
	require.Contains(t, command.Args, "PACKAGES=luci -ppp")

	rendered := execx.Command{Name: command.Name, Args: command.Args}.String()
	require.Contains(t, rendered, `"PACKAGES=luci -ppp"`)
}
