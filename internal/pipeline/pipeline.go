// Package pipeline sequences the extract, transform, and load stages of one
// weather observation run and owns the per-stage retry policy.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-etl-job/internal/domain"
	"github.com/couchcryptid/weather-etl-job/internal/observability"
)

// Extractor fetches one raw observation from the source API.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawObservation, error)
}

// Transformer normalizes a raw observation. Implementations must be pure:
// no I/O, deterministic, safe to call repeatedly.
type Transformer interface {
	Transform(raw domain.RawObservation) (domain.ProcessedObservation, error)
}

// Loader persists one processed observation to the sink.
type Loader interface {
	Load(ctx context.Context, obs domain.ProcessedObservation) error
}

// Stage names used in logs and metric labels.
const (
	stageExtract   = "extract"
	stageTransform = "transform"
	stageLoad      = "load"
)

// RunStatus records the outcome of the most recent run for the status endpoint.
type RunStatus struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// Pipeline coordinates one extract-transform-load run per invocation.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader

	extractPolicy Policy
	loadPolicy    Policy

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	ready   atomic.Bool
	lastRun atomic.Pointer[RunStatus]
}

// Option adjusts pipeline construction.
type Option func(*Pipeline)

// WithExtractPolicy overrides the extractor retry budget.
func WithExtractPolicy(p Policy) Option {
	return func(pl *Pipeline) { pl.extractPolicy = p }
}

// WithLoadPolicy overrides the loader retry budget.
func WithLoadPolicy(p Policy) Option {
	return func(pl *Pipeline) { pl.loadPolicy = p }
}

// WithClock injects a time source for retry delays. Tests pass a fake clock
// so retry tests complete instantly.
func WithClock(c clockwork.Clock) Option {
	return func(pl *Pipeline) { pl.clock = c }
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, l Loader, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:     e,
		transformer:   t,
		loader:        l,
		extractPolicy: DefaultExtractPolicy,
		loadPolicy:    DefaultLoadPolicy,
		clock:         clockwork.NewRealClock(),
		logger:        logger,
		metrics:       metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunOnce executes one complete run: extract with retries, transform once,
// load with retries. The first stage to exhaust its budget aborts the run
// and its error propagates to the caller; the loader either commits one full
// row or writes nothing.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	start := time.Now()

	logger.Info("run started")

	var raw domain.RawObservation
	err := p.timedStage(stageExtract, func() error {
		return p.extractPolicy.run(ctx, p.clock, logger, stageExtract, p.metrics, func(ctx context.Context) error {
			var exErr error
			raw, exErr = p.extractor.Extract(ctx)
			return exErr
		})
	})
	if err != nil {
		return p.finish(logger, runID, start, stageExtract, err)
	}
	logger.Info("extraction complete", "city", raw.City, "observed_at", raw.ObservedAt)

	var processed domain.ProcessedObservation
	err = p.timedStage(stageTransform, func() error {
		// Deterministic; retrying a pure function is meaningless.
		var tfErr error
		processed, tfErr = p.transformer.Transform(raw)
		return tfErr
	})
	if err != nil {
		return p.finish(logger, runID, start, stageTransform, err)
	}
	logger.Info("transformation complete",
		"city", processed.City,
		"temp_celsius", processed.TempCelsius,
		"data_quality", processed.DataQuality,
	)

	err = p.timedStage(stageLoad, func() error {
		return p.loadPolicy.run(ctx, p.clock, logger, stageLoad, p.metrics, func(ctx context.Context) error {
			return p.loader.Load(ctx, processed)
		})
	})
	if err != nil {
		return p.finish(logger, runID, start, stageLoad, err)
	}

	p.metrics.RowsWritten.Inc()
	p.metrics.LastSuccessTime.SetToCurrentTime()
	p.ready.Store(true)
	return p.finish(logger, runID, start, "", nil)
}

// timedStage records the wall-clock duration of one stage, retries included.
func (p *Pipeline) timedStage(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return err
}

func (p *Pipeline) finish(logger *slog.Logger, runID string, start time.Time, stage string, err error) error {
	elapsed := time.Since(start)
	p.metrics.RunDuration.Observe(elapsed.Seconds())

	status := &RunStatus{
		RunID:      runID,
		StartedAt:  start.UTC(),
		FinishedAt: start.Add(elapsed).UTC(),
		Success:    err == nil,
	}

	if err != nil {
		status.Error = err.Error()
		p.metrics.RunsTotal.WithLabelValues("failure").Inc()
		p.metrics.StageErrors.WithLabelValues(stage).Inc()
		logger.Error("run failed", "stage", stage, "duration", elapsed, "error", err)
	} else {
		p.metrics.RunsTotal.WithLabelValues("success").Inc()
		logger.Info("run complete", "duration", elapsed)
	}

	p.lastRun.Store(status)
	return err
}

// CheckReadiness returns nil once at least one run has committed a row.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no successful run yet")
	}
	return nil
}

// LastRun returns the outcome of the most recent run, or false if no run
// has finished.
func (p *Pipeline) LastRun() (RunStatus, bool) {
	s := p.lastRun.Load()
	if s == nil {
		return RunStatus{}, false
	}
	return *s, true
}
