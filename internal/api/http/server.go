package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/osadchiy/routerdesk/internal/config"
	domain "github.com/osadchiy/routerdesk/internal/domain/console"
	"github.com/osadchiy/routerdesk/internal/metrics"
	"github.com/osadchiy/routerdesk/internal/web"
)

// Runner is the slice of the runner service the API depends on.
type Runner interface {
	Execute(ctx context.Context, name string, args []string, actor *domain.Actor) (*domain.Run, error)
	Status() (*domain.Run, []*domain.Run)
	Busy() bool
	LogTail(n int) ([]string, error)
}

// Terminal is the slice of the terminal supervisor the API depends on.
type Terminal interface {
	Port() int
	Running() bool
}

// Server wires the console handlers into a chi router.
type Server struct {
	// baseCtx outlives individual requests; triggered actions run on it so
	// a closed browser tab does not cancel an opkg upgrade halfway.
	baseCtx context.Context //nolint:containedctx // Deliberate: run lifetime != request lifetime.

	runner      Runner
	terminal    Terminal
	actionNames func() []string
	profile     func() *config.Profile
	catalogPath string
	startTime   time.Time
	registry    *prometheus.Registry
}

// Options configures the API server.
type Options struct {
	// Runner executes administrative actions.
	Runner Runner
	// Terminal answers port lookups.
	Terminal Terminal
	// ActionNames lists locally resolvable actions for the dashboard.
	ActionNames func() []string
	// Profile returns the current remote profile, nil when never fetched.
	Profile func() *config.Profile
	// CatalogPath is where the processed device list lives.
	CatalogPath string
	// Registry serves /metrics; nil disables the endpoint.
	Registry *prometheus.Registry
}

// NewServer creates the API server. baseCtx bounds the lifetime of runs
// triggered over HTTP.
func NewServer(baseCtx context.Context, opts *Options) *Server {
	return &Server{
		baseCtx:     baseCtx,
		runner:      opts.Runner,
		terminal:    opts.Terminal,
		actionNames: opts.ActionNames,
		profile:     opts.Profile,
		catalogPath: opts.CatalogPath,
		startTime:   time.Now(),
		registry:    opts.Registry,
	}
}

// Router builds the chi router with all console routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/actions", s.handleTrigger)
		r.Get("/terminal", s.handleTerminal)
		r.Get("/devices", s.handleDevices)
	})

	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(s.registry))
	}

	r.Handle("/*", web.Handler())

	return r
}
