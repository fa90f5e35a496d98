package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements Recorder on a prometheus registry.
type Prometheus struct {
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	runsRefused  prometheus.Counter
	profileTotal *prometheus.CounterVec
}

// NewPrometheus creates and registers the routerdesk collectors.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routerdesk",
			Name:      "runs_total",
			Help:      "Administrative runs by action and final status.",
		}, []string{"action", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "routerdesk",
			Name:      "run_duration_seconds",
			Help:      "Wall time of administrative runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
		}, []string{"action"}),
		runsRefused: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "routerdesk",
			Name:      "runs_refused_total",
			Help:      "Invocations refused because the lock was held.",
		}),
		profileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routerdesk",
			Name:      "profile_refresh_total",
			Help:      "Remote profile fetch attempts by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(p.runsTotal, p.runDuration, p.runsRefused, p.profileTotal)

	return p
}

// RunStarted implements Recorder. Start is recorded implicitly through the
// duration histogram; nothing to count here yet.
func (p *Prometheus) RunStarted(string) {}

// RunFinished implements Recorder.
func (p *Prometheus) RunFinished(action, status string, seconds float64) {
	p.runsTotal.WithLabelValues(action, status).Inc()
	p.runDuration.WithLabelValues(action).Observe(seconds)
}

// RunRefused implements Recorder.
func (p *Prometheus) RunRefused() {
	p.runsRefused.Inc()
}

// ProfileRefreshed implements Recorder.
func (p *Prometheus) ProfileRefreshed(success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}

	p.profileTotal.WithLabelValues(outcome).Inc()
}

// Handler returns the HTTP handler serving the registry in Prometheus format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
