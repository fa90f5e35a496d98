package console

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestActorClone verifies that Clone returns a deep copy and handles nil safely.
func TestActorClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Actor)(nil).Clone())

	a := &Actor{
		Hostname: "gw-home",
		Username: "root",
	}

	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
}

// TestRunClone verifies that Run.Clone copies fields and detaches shared slices.
func TestRunClone(t *testing.T) {
	t.Parallel()

	r := &Run{
		ID:        "run-1",
		Action:    "packages-update",
		Args:      []string{"--force"},
		Actor:     &Actor{Hostname: "gw-home", Username: "root"},
		StartedAt: time.Unix(100, 0),
		Status:    StatusRunning,
	}

	c := r.Clone()
	require.Equal(t, r, c)
	require.NotSame(t, r, c)
	require.NotSame(t, r.Actor, c.Actor)

	c.Args[0] = "mutated"
	require.Equal(t, "--force", r.Args[0])
}

// TestRunFinishedAndDuration covers lifecycle helpers.
func TestRunFinishedAndDuration(t *testing.T) {
	t.Parallel()

	r := &Run{
		StartedAt:  time.Unix(100, 0),
		FinishedAt: time.Unix(103, 0),
		Status:     StatusSucceeded,
	}

	require.True(t, r.Finished())
	require.Equal(t, 3*time.Second, r.Duration())

	running := &Run{
		StartedAt: time.Now().Add(-time.Second),
		Status:    StatusRunning,
	}
	require.False(t, running.Finished())
	require.Positive(t, running.Duration())
}
