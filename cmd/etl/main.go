// Command etl runs the weather observation pipeline. By default it performs
// one extract-transform-load run and exits, so any external scheduler (cron,
// a workflow orchestrator, a Kubernetes CronJob) can invoke it on a timer;
// a non-zero exit code means no row was written. Setting RUN_INTERVAL turns
// it into a long-running process with an in-process scheduler and health,
// status, and metrics endpoints.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/weather-etl-job/internal/adapter/http"
	"github.com/couchcryptid/weather-etl-job/internal/adapter/openweather"
	"github.com/couchcryptid/weather-etl-job/internal/adapter/postgres"
	"github.com/couchcryptid/weather-etl-job/internal/config"
	"github.com/couchcryptid/weather-etl-job/internal/observability"
	"github.com/couchcryptid/weather-etl-job/internal/pipeline"
	"github.com/couchcryptid/weather-etl-job/internal/schedule"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	extractor := openweather.NewClient(cfg.APIKey, cfg.City, cfg.Units, cfg.APIBaseURL, cfg.APITimeout, logger)
	transformer := pipeline.NewTransformer(logger)
	loader := postgres.NewLoader(cfg.DatabaseURL, cfg.DBTimeout, logger)

	p := pipeline.New(extractor, transformer, loader, logger, metrics,
		pipeline.WithExtractPolicy(pipeline.Policy{
			MaxAttempts: cfg.ExtractMaxAttempts,
			Delay:       cfg.ExtractRetryDelay,
		}),
		pipeline.WithLoadPolicy(pipeline.Policy{
			MaxAttempts: cfg.LoadMaxAttempts,
			Delay:       cfg.LoadRetryDelay,
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RunInterval <= 0 {
		// One-shot mode: the exit code is the contract with the scheduler.
		if err := p.RunOnce(ctx); err != nil {
			logger.Error("pipeline run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Interval mode.
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	sched, err := schedule.New(p, cfg.RunInterval, logger)
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}
	if err := sched.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := sched.Stop(); err != nil {
		logger.Error("scheduler stop error", "error", err)
	}

	logger.Info("shutdown complete")
}
