package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-etl-job/internal/domain"
	"github.com/couchcryptid/weather-etl-job/internal/observability"
)

// Policy is a fixed-delay retry budget for one pipeline stage. MaxAttempts
// counts the initial attempt, so {MaxAttempts: 3} means two retries.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Default budgets mirror the stage contracts: the extractor absorbs short
// API blips, the loader waits longer for database connectivity to return.
var (
	DefaultExtractPolicy = Policy{MaxAttempts: 3, Delay: 30 * time.Second}
	DefaultLoadPolicy    = Policy{MaxAttempts: 4, Delay: 60 * time.Second}
)

// run invokes fn until it succeeds, the budget is exhausted, a non-retryable
// error occurs, or the context is cancelled. Delays go through the injected
// clock so tests never sleep. The terminal error is returned unmodified.
func (p Policy) run(ctx context.Context, clock clockwork.Clock, logger *slog.Logger,
	stage string, metrics *observability.Metrics, fn func(context.Context) error) error {

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !domain.Retryable(err) {
			logger.Error("stage failed, not retryable",
				"stage", stage, "attempt", attempt, "error", err)
			return err
		}
		if attempt == attempts {
			break
		}

		metrics.RetryAttempts.WithLabelValues(stage).Inc()
		logger.Warn("stage failed, retrying",
			"stage", stage, "attempt", attempt, "delay", p.Delay, "error", err)

		if p.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-clock.After(p.Delay):
			}
		}
	}

	logger.Error("stage failed, retries exhausted",
		"stage", stage, "attempts", attempts, "error", err)
	return err
}
