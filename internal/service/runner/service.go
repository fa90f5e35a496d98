package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osadchiy/routerdesk/internal/actionlog"
	domain "github.com/osadchiy/routerdesk/internal/domain/console"
	"github.com/osadchiy/routerdesk/internal/execx"
	"github.com/osadchiy/routerdesk/internal/lockfile"
	"github.com/osadchiy/routerdesk/internal/logger"
	"github.com/osadchiy/routerdesk/internal/metrics"
	repo "github.com/osadchiy/routerdesk/internal/repository/runhistory"
	"github.com/osadchiy/routerdesk/internal/service/actions"
)

// ErrBusy is returned when another administrative run holds the lock.
var ErrBusy = errors.New("another operation is in progress")

// defaultMaxHistory bounds the persisted run history.
const defaultMaxHistory = 20

// Resolver turns action names into command plans.
type Resolver interface {
	Resolve(ctx context.Context, name string, args []string) (*actions.Plan, error)
}

// Service serializes and executes administrative actions.
type Service struct {
	// lockPath is the advisory lock file location.
	lockPath string
	// log receives headers, refusals and combined command output.
	log *actionlog.Log
	// repo persists the run history across daemon restarts.
	repo repo.Repository
	// resolver maps action names to command plans.
	resolver Resolver
	// recorder receives run measurements.
	recorder metrics.Recorder
	// maxHistory bounds how many finished runs are retained.
	maxHistory int

	// mu protects current and history.
	mu sync.RWMutex
	// current is the in-flight run, nil when idle.
	current *domain.Run
	// history holds finished runs, newest first.
	history []*domain.Run
}

// Option configures the service.
type Option func(*Service)

// WithRecorder injects a metrics recorder.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

// WithMaxHistory overrides the retained history length.
func WithMaxHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

// NewService creates a runner backed by the provided lock, log, history
// repository and resolver. Previously persisted history is loaded when present.
func NewService(
	ctx context.Context,
	lockPath string,
	log *actionlog.Log,
	repository repo.Repository,
	resolver Resolver,
	opts ...Option,
) (*Service, error) {
	s := &Service{
		lockPath:   lockPath,
		log:        log,
		repo:       repository,
		resolver:   resolver,
		recorder:   metrics.Noop{},
		maxHistory: defaultMaxHistory,
	}

	for _, opt := range opts {
		opt(s)
	}

	if repository == nil {
		return s, nil
	}

	history, err := repository.Load(ctx)
	switch {
	case err == nil:
		s.history = history
	case errors.Is(err, repo.ErrNotFound):
		// Fresh install, empty history.
	default:
		return nil, fmt.Errorf("load run history: %w", err)
	}

	return s, nil
}

// Execute runs the named action under the advisory lock, blocking until it
// finishes. When the lock is already held it appends exactly one refusal
// line to the log and returns ErrBusy without further side effects.
func (s *Service) Execute(
	ctx context.Context,
	name string,
	args []string,
	actor *domain.Actor,
) (*domain.Run, error) {
	lock, err := lockfile.Acquire(ctx, s.lockPath)
	if err != nil {
		if errors.Is(err, lockfile.ErrHeld) {
			s.recorder.RunRefused()

			refusal := fmt.Sprintf("ERROR: action %q refused: %s", name, ErrBusy)
			if logErr := s.log.Append(refusal); logErr != nil {
				logger.ErrorKV(ctx, "Failed to log refusal", "error", logErr)
			}

			return nil, ErrBusy
		}

		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	// The lock must disappear on every exit path, including cancellation.
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logger.ErrorKV(ctx, "Failed to release lock", "error", releaseErr)
		}
	}()

	plan, err := s.resolver.Resolve(ctx, name, args)
	if err != nil {
		return nil, err
	}

	if plan.Cleanup != nil {
		defer plan.Cleanup()
	}

	run := &domain.Run{
		ID:        uuid.NewString(),
		Action:    name,
		Args:      append([]string(nil), args...),
		Delegated: plan.Delegated,
		Actor:     actor.Clone(),
		StartedAt: time.Now(),
		Status:    domain.StatusRunning,
	}

	s.setCurrent(run)
	s.recorder.RunStarted(name)
	logger.InfoKV(ctx, "Run started", "run_id", run.ID, "action", name, "delegated", plan.Delegated)

	exitCode, runErr := s.executePlan(ctx, run, plan)

	run.FinishedAt = time.Now()
	run.ExitCode = exitCode

	if runErr != nil {
		run.Status = domain.StatusFailed
		run.Error = runErr.Error()
	} else {
		run.Status = domain.StatusSucceeded
	}

	s.finishCurrent(ctx, run)
	s.recorder.RunFinished(name, string(run.Status), run.Duration().Seconds())
	logger.InfoKV(ctx, "Run finished",
		"run_id", run.ID, "action", name, "status", run.Status, "exit_code", exitCode)

	if runErr != nil {
		return run.Clone(), fmt.Errorf("action %s: %w", name, runErr)
	}

	return run.Clone(), nil
}

// executePlan streams the plan's commands into the action log.
func (s *Service) executePlan(ctx context.Context, run *domain.Run, plan *actions.Plan) (int, error) {
	header := fmt.Sprintf("=== %s run %s: %s", run.StartedAt.Format(time.RFC3339), run.ID, run.Action)
	if run.Actor != nil {
		header += fmt.Sprintf(" (by %s@%s)", run.Actor.Username, run.Actor.Hostname)
	}

	if err := s.log.Append(header); err != nil {
		return -1, fmt.Errorf("write run header: %w", err)
	}

	out, err := s.log.OpenWriter()
	if err != nil {
		return -1, fmt.Errorf("open log writer: %w", err)
	}

	defer func() {
		_ = out.Close()
	}()

	for _, command := range plan.Commands {
		if _, err := fmt.Fprintf(out, "$ %s\n", command.String()); err != nil {
			return -1, fmt.Errorf("write command header: %w", err)
		}

		exitCode, err := execx.Run(ctx, command, out)
		if err != nil {
			_, _ = fmt.Fprintf(out, "=== failed: %v\n", err)

			return exitCode, err
		}
	}

	_, _ = fmt.Fprintln(out, "=== done")

	return 0, nil
}

// Status returns the in-flight run (nil when idle) and the finished history,
// newest first. Both are clones.
func (s *Service) Status() (*domain.Run, []*domain.Run) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]*domain.Run, 0, len(s.history))
	for _, run := range s.history {
		history = append(history, run.Clone())
	}

	return s.current.Clone(), history
}

// Busy reports whether a run is currently in flight.
func (s *Service) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current != nil
}

// LogTail returns up to n trailing lines of the action log.
func (s *Service) LogTail(n int) ([]string, error) {
	return s.log.Tail(n)
}

// setCurrent marks the run as in flight.
func (s *Service) setCurrent(run *domain.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = run
}

// finishCurrent moves the run into history and persists it.
func (s *Service) finishCurrent(ctx context.Context, run *domain.Run) {
	s.mu.Lock()

	s.current = nil
	s.history = append([]*domain.Run{run}, s.history...)

	if len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}

	snapshot := make([]*domain.Run, len(s.history))
	copy(snapshot, s.history)

	s.mu.Unlock()

	if s.repo == nil {
		return
	}

	if err := s.repo.Save(ctx, snapshot); err != nil {
		logger.ErrorKV(ctx, "Failed to persist run history", "error", err)
	}
}
