// Package schedule provides an optional in-process interval scheduler for
// deployments without an external orchestrator. The pipeline itself stays
// scheduler-agnostic; this package just calls RunOnce on a timer.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Runner is the single synchronous entry point a scheduler invokes.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// Scheduler re-runs the pipeline on a fixed interval.
type Scheduler struct {
	scheduler gocron.Scheduler
	runner    Runner
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a Scheduler that fires every interval, in UTC.
func New(runner Runner, interval time.Duration, logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		interval:  interval,
		logger:    logger,
	}, nil
}

// Start registers the job and begins firing, with the first run immediate.
// Run errors are logged, not propagated: the next tick is the retry. The
// passed context bounds every scheduled run.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if err := s.runner.RunOnce(ctx); err != nil {
				s.logger.Error("scheduled run failed", "error", err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	s.logger.Info("scheduler started", "interval", s.interval)
	return nil
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
