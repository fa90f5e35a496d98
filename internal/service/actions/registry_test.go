package actions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osadchiy/routerdesk/internal/config"
)

// TestResolveBuiltin resolves a builtin action into its tool invocations.
func TestResolveBuiltin(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	plan, err := r.Resolve(context.Background(), "packages-update", nil)
	require.NoError(t, err)
	require.False(t, plan.Delegated)
	require.Len(t, plan.Commands, 1)
	require.Equal(t, "opkg", plan.Commands[0].Name)
	require.Equal(t, []string{"update"}, plan.Commands[0].Args)
}

// TestResolveBuiltinArgValidation surfaces planner argument errors.
func TestResolveBuiltinArgValidation(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	_, err := r.Resolve(context.Background(), "firmware-fetch", nil)
	require.Error(t, err)

	plan, err := r.Resolve(context.Background(), "firmware-fetch", []string{"https://mirror/fw.bin"})
	require.NoError(t, err)
	require.Equal(t, "wget", plan.Commands[0].Name)
	require.Contains(t, plan.Commands[0].Args, "https://mirror/fw.bin")
}

// TestResolveProfileAction resolves actions pushed via the remote profile,
// appending caller arguments to the configured argv.
func TestResolveProfileAction(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.ApplyProfile(&config.Profile{
		Actions: map[string][]string{
			"dns-flush": {"/etc/init.d/dnsmasq", "restart"},
		},
	})

	plan, err := r.Resolve(context.Background(), "dns-flush", []string{"--verbose"})
	require.NoError(t, err)
	require.Len(t, plan.Commands, 1)
	require.Equal(t, "/etc/init.d/dnsmasq", plan.Commands[0].Name)
	require.Equal(t, []string{"restart", "--verbose"}, plan.Commands[0].Args)

	require.Contains(t, r.Names(), "dns-flush")
	require.Contains(t, r.Names(), "reboot")
}

// TestResolveUnknownWithoutFallback fails when nothing can handle the name.
func TestResolveUnknownWithoutFallback(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	_, err := r.Resolve(context.Background(), "mystery", nil)
	require.ErrorIs(t, err, ErrUnknownAction)

	_, err = r.Resolve(context.Background(), "", nil)
	require.Error(t, err)
}

// TestResolveDelegation fetches the fallback script and forwards name + args.
func TestResolveDelegation(t *testing.T) {
	t.Parallel()

	const script = "#!/bin/sh\necho delegated \"$@\"\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(script))
	}))
	defer srv.Close()

	r := NewRegistry()
	r.ApplyProfile(&config.Profile{FallbackScriptURL: srv.URL + "/fallback.sh"})

	plan, err := r.Resolve(context.Background(), "mystery", []string{"a", "b"})
	require.NoError(t, err)
	require.True(t, plan.Delegated)
	require.NotNil(t, plan.Cleanup)
	require.Len(t, plan.Commands, 1)

	// Name forwarded verbatim, then the original arguments.
	require.Equal(t, []string{"mystery", "a", "b"}, plan.Commands[0].Args)

	// Script landed on disk, executable, with the served contents.
	contents, err := os.ReadFile(plan.Commands[0].Name)
	require.NoError(t, err)
	require.Equal(t, script, string(contents))

	info, err := os.Stat(plan.Commands[0].Name)
	require.NoError(t, err)
	require.NotZero(t, info.Mode()&0o100)

	plan.Cleanup()
	_, err = os.Stat(plan.Commands[0].Name)
	require.Error(t, err)
}

// TestResolveDelegationBadStatus propagates fetch failures.
func TestResolveDelegationBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRegistry()
	r.ApplyProfile(&config.Profile{FallbackScriptURL: srv.URL})

	_, err := r.Resolve(context.Background(), "mystery", nil)
	require.Error(t, err)
}
