package runner

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osadchiy/routerdesk/internal/actionlog"
	domain "github.com/osadchiy/routerdesk/internal/domain/console"
	"github.com/osadchiy/routerdesk/internal/execx"
	"github.com/osadchiy/routerdesk/internal/repository/runhistory"
	"github.com/osadchiy/routerdesk/internal/service/actions"
)

// planResolver returns a fixed plan for every action name.
type planResolver struct {
	plans map[string]*actions.Plan
}

// Resolve implements the Resolver interface over the fixed plan table.
func (r *planResolver) Resolve(_ context.Context, name string, _ []string) (*actions.Plan, error) {
	return r.plans[name], nil
}

// newTestService wires a runner over tempdir fixtures with echo-style plans.
func newTestService(t *testing.T) (*Service, string, *actionlog.Log) {
	t.Helper()

	dir := t.TempDir()
	lockPath := filepath.Join(dir, "console.lock")
	log := actionlog.New(filepath.Join(dir, "actions.log"))
	repo := runhistory.NewFileRepository(filepath.Join(dir, "history.json"))

	resolver := &planResolver{
		plans: map[string]*actions.Plan{
			"ok": {
				Action: "ok",
				Commands: []execx.Command{
					{Name: "echo", Args: []string{"all good"}},
				},
			},
			"boom": {
				Action: "boom",
				Commands: []execx.Command{
					{Name: "echo", Args: []string{"about to fail"}},
					{Name: "false"},
					{Name: "echo", Args: []string{"never reached"}},
				},
			},
		},
	}

	svc, err := NewService(context.Background(), lockPath, log, repo, resolver)
	require.NoError(t, err)

	return svc, lockPath, log
}

// TestExecuteSuccess runs an action, captures its output and records history.
func TestExecuteSuccess(t *testing.T) {
	t.Parallel()

	svc, lockPath, log := newTestService(t)
	actor := &domain.Actor{Hostname: "gw-home", Username: "root"}

	run, err := svc.Execute(context.Background(), "ok", nil, actor)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSucceeded, run.Status)
	require.Zero(t, run.ExitCode)
	require.True(t, run.Finished())

	// Lock released.
	_, err = os.Stat(lockPath)
	require.True(t, os.IsNotExist(err))

	// Output streamed to the log.
	tail, err := log.Tail(10)
	require.NoError(t, err)
	require.Contains(t, tail, "all good")
	require.Contains(t, tail, "=== done")

	// History recorded.
	current, history := svc.Status()
	require.Nil(t, current)
	require.Len(t, history, 1)
	require.Equal(t, "ok", history[0].Action)
}

// TestExecuteFailure stops at the first failing command and releases the lock.
func TestExecuteFailure(t *testing.T) {
	t.Parallel()

	svc, lockPath, log := newTestService(t)

	run, err := svc.Execute(context.Background(), "boom", nil, nil)
	require.Error(t, err)
	require.Equal(t, domain.StatusFailed, run.Status)
	require.Equal(t, 1, run.ExitCode)

	tail, err := log.Tail(20)
	require.NoError(t, err)
	require.Contains(t, tail, "about to fail")
	require.NotContains(t, tail, "never reached")

	_, err = os.Stat(lockPath)
	require.True(t, os.IsNotExist(err))
}

// TestExecuteRefusedWhileLocked verifies the lock contract: a second
// invocation appends exactly one log line, touches nothing else, and fails.
func TestExecuteRefusedWhileLocked(t *testing.T) {
	t.Parallel()

	svc, lockPath, log := newTestService(t)

	// Simulate an in-flight operation owned by a live process (ourselves).
	require.NoError(t, os.WriteFile(lockPath, []byte(strconv.Itoa(os.Getpid())), 0o644))

	before, err := log.Tail(100)
	require.NoError(t, err)

	run, err := svc.Execute(context.Background(), "ok", nil, nil)
	require.ErrorIs(t, err, ErrBusy)
	require.Nil(t, run)

	after, err := log.Tail(100)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	require.Contains(t, after[len(after)-1], "refused")

	// No history entry, lock untouched.
	_, history := svc.Status()
	require.Empty(t, history)
	require.FileExists(t, lockPath)
}

// TestHistoryBound keeps at most the configured number of runs.
func TestHistoryBound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	log := actionlog.New(filepath.Join(dir, "actions.log"))
	resolver := &planResolver{
		plans: map[string]*actions.Plan{
			"ok": {Action: "ok", Commands: []execx.Command{{Name: "true"}}},
		},
	}

	svc, err := NewService(
		context.Background(),
		filepath.Join(dir, "console.lock"),
		log,
		runhistory.NewFileRepository(filepath.Join(dir, "history.json")),
		resolver,
		WithMaxHistory(2),
	)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.Execute(context.Background(), "ok", nil, nil)
		require.NoError(t, err)
	}

	_, history := svc.Status()
	require.Len(t, history, 2)
}

// TestHistorySurvivesRestart reloads persisted runs into a fresh service.
func TestHistorySurvivesRestart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	historyPath := filepath.Join(dir, "history.json")
	log := actionlog.New(filepath.Join(dir, "actions.log"))
	repo := runhistory.NewFileRepository(historyPath)
	resolver := &planResolver{
		plans: map[string]*actions.Plan{
			"ok": {Action: "ok", Commands: []execx.Command{{Name: "true"}}},
		},
	}

	svc, err := NewService(context.Background(), filepath.Join(dir, "console.lock"), log, repo, resolver)
	require.NoError(t, err)

	_, err = svc.Execute(context.Background(), "ok", nil, nil)
	require.NoError(t, err)

	restarted, err := NewService(context.Background(), filepath.Join(dir, "console.lock"), log, repo, resolver)
	require.NoError(t, err)

	_, history := restarted.Status()
	require.Len(t, history, 1)
	require.Equal(t, "ok", history[0].Action)
}
