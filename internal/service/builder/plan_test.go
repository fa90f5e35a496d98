package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

func TestLoadPlan(t *testing.T) {
	t.Parallel()

	path := writePlan(t, `
version: "23.05.3"
target: "ath79/generic"
profile: "tplink_archer-c7-v5"
packages: [luci, -ppp]
publish: "deploy@web01:/var/www/firmware/"
`)

	plan, err := LoadPlan(path)
	require.NoError(t, err)
	require.Equal(t, "build", plan.Workdir)
	require.Equal(t, []string{"luci", "-ppp"}, plan.Packages)
}

func TestLoadPlanValidation(t *testing.T) {
	t.Parallel()

	_, err := LoadPlan(writePlan(t, `target: "ath79/generic"`))
	require.ErrorIs(t, err, errPlanVersionRequired)

	_, err = LoadPlan(writePlan(t, "version: \"23.05.3\"\ntarget: \"ath79\"\nprofile: p"))
	require.ErrorIs(t, err, errPlanBadTarget)
}

func TestPlanDerivedPaths(t *testing.T) {
	t.Parallel()

	plan := &Plan{Version: "23.05.3", Target: "ath79/generic", Profile: "p"}
	require.NoError(t, plan.Validate())

	require.Equal(t,
		"https://downloads.openwrt.org/releases/23.05.3/targets/ath79/generic/"+
			"openwrt-imagebuilder-23.05.3-ath79-generic.Linux-x86_64.tar.xz",
		plan.DownloadURL())
	require.Equal(t,
		filepath.Join("build", "openwrt-imagebuilder-23.05.3-ath79-generic.Linux-x86_64"),
		plan.BuilderDir())
	require.Equal(t,
		filepath.Join(plan.BuilderDir(), "bin", "targets", "ath79", "generic"),
		plan.OutputDir())

	custom := &Plan{
		Version: "23.05.3", Target: "ath79/generic", Profile: "p",
		ImagebuilderURL: "https://mirror.example.org/ib.tar.xz",
	}
	require.NoError(t, custom.Validate())
	require.Equal(t, "https://mirror.example.org/ib.tar.xz", custom.DownloadURL())
}
