package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL job.
type Metrics struct {
	RunsTotal     *prometheus.CounterVec // labels: outcome={success,failure}
	StageErrors   *prometheus.CounterVec // labels: stage={extract,transform,load}
	RetryAttempts *prometheus.CounterVec // labels: stage={extract,load}
	RowsWritten   prometheus.Counter

	RunDuration     prometheus.Histogram
	StageDuration   *prometheus.HistogramVec // labels: stage={extract,transform,load}
	LastSuccessTime prometheus.Gauge
}

// NewMetrics creates and registers all job metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "runs_total",
			Help:      "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "stage_errors_total",
			Help:      "Terminal stage failures after retries were exhausted.",
		}, []string{"stage"}),
		RetryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "retry_attempts_total",
			Help:      "Retries performed per stage.",
		}, []string{"stage"}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "rows_written_total",
			Help:      "Observation rows successfully loaded into the sink table.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_etl",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage, retries included.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		LastSuccessTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_etl",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}

	prometheus.MustRegister(
		m.RunsTotal,
		m.StageErrors,
		m.RetryAttempts,
		m.RowsWritten,
		m.RunDuration,
		m.StageDuration,
		m.LastSuccessTime,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsTotal:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_etl", Name: "runs_total"}, []string{"outcome"}),
		StageErrors:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_etl", Name: "stage_errors_total"}, []string{"stage"}),
		RetryAttempts:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_etl", Name: "retry_attempts_total"}, []string{"stage"}),
		RowsWritten:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_etl", Name: "rows_written_total"}),
		RunDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "weather_etl", Name: "run_duration_seconds"}),
		StageDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "weather_etl", Name: "stage_duration_seconds"}, []string{"stage"}),
		LastSuccessTime: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "weather_etl", Name: "last_success_timestamp_seconds"}),
	}
}
