package console

import (
	"context"
	"fmt"

	"github.com/go-co-op/gocron/v2"

	"github.com/osadchiy/routerdesk/internal/config"
	"github.com/osadchiy/routerdesk/internal/logger"
)

// scheduler wraps gocron for the daemon's periodic jobs.
type scheduler struct {
	inner gocron.Scheduler
}

// newScheduler creates the scheduler with the profile refresh and update
// check jobs registered.
func newScheduler(ctx context.Context, d *daemon, schedule config.Schedule) (*scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	if _, err := inner.NewJob(
		gocron.DurationJob(schedule.ProfileRefresh),
		gocron.NewTask(d.refreshProfile, ctx),
		gocron.WithName("profile-refresh"),
	); err != nil {
		return nil, fmt.Errorf("schedule profile refresh: %w", err)
	}

	if _, err := inner.NewJob(
		gocron.DurationJob(schedule.UpdateCheck),
		gocron.NewTask(d.checkUpdates, ctx),
		gocron.WithName("update-check"),
	); err != nil {
		return nil, fmt.Errorf("schedule update check: %w", err)
	}

	return &scheduler{inner: inner}, nil
}

// Start begins running the registered jobs.
func (s *scheduler) Start(ctx context.Context) {
	logger.Info(ctx, "Starting scheduler")
	s.inner.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *scheduler) Stop(ctx context.Context) {
	logger.Info(ctx, "Stopping scheduler")

	if err := s.inner.Shutdown(); err != nil {
		logger.ErrorKV(ctx, "Failed to stop scheduler", "error", err)
	}
}
