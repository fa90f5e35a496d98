package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// TestPrometheusRecorder exercises every Recorder method against a fresh registry.
func TestPrometheusRecorder(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := NewPrometheus(reg)

	rec.RunStarted("packages-update")
	rec.RunFinished("packages-update", "succeeded", 1.5)
	rec.RunRefused()
	rec.ProfileRefreshed(true)
	rec.ProfileRefreshed(false)

	require.Equal(t, float64(1), testutil.ToFloat64(rec.runsRefused))
	require.Equal(t, float64(1), testutil.ToFloat64(rec.runsTotal.WithLabelValues("packages-update", "succeeded")))
	require.Equal(t, float64(1), testutil.ToFloat64(rec.profileTotal.WithLabelValues("success")))
	require.Equal(t, float64(1), testutil.ToFloat64(rec.profileTotal.WithLabelValues("error")))
}

// TestNoopSatisfiesInterface keeps the default wiring honest.
func TestNoopSatisfiesInterface(t *testing.T) {
	t.Parallel()

	var rec Recorder = Noop{}
	rec.RunStarted("x")
	rec.RunFinished("x", "failed", 0)
	rec.RunRefused()
	rec.ProfileRefreshed(true)
	require.NotNil(t, rec)
}
