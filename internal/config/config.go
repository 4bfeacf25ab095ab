package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all job settings, populated from environment variables.
// Secrets (API key, database URL) are treated as opaque strings supplied by
// the external secret loader; the job never parses them beyond presence.
type Config struct {
	APIKey     string
	City       string
	Units      string
	APIBaseURL string
	APITimeout time.Duration

	DatabaseURL string
	DBTimeout   time.Duration

	ExtractMaxAttempts int
	ExtractRetryDelay  time.Duration
	LoadMaxAttempts    int
	LoadRetryDelay     time.Duration

	// RunInterval > 0 switches the binary from one-shot mode into a
	// long-running process that re-runs the pipeline on a fixed interval
	// and serves health/metrics endpoints.
	RunInterval     time.Duration
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	// Best-effort, matching local-dev workflows; real deployments inject env.
	_ = godotenv.Load()

	apiTimeout, err := durationEnv("API_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	dbTimeout, err := durationEnv("DB_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	extractDelay, err := durationEnv("EXTRACT_RETRY_DELAY", 30*time.Second)
	if err != nil {
		return nil, err
	}
	loadDelay, err := durationEnv("LOAD_RETRY_DELAY", 60*time.Second)
	if err != nil {
		return nil, err
	}
	runInterval, err := durationEnv("RUN_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	extractAttempts, err := intEnv("EXTRACT_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	loadAttempts, err := intEnv("LOAD_MAX_ATTEMPTS", 4)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIKey:     os.Getenv("OPENWEATHER_API_KEY"),
		City:       envOrDefault("WEATHER_CITY", "Bournemouth,GB"),
		Units:      envOrDefault("WEATHER_UNITS", "standard"),
		APIBaseURL: envOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
		APITimeout: apiTimeout,

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBTimeout:   dbTimeout,

		ExtractMaxAttempts: extractAttempts,
		ExtractRetryDelay:  extractDelay,
		LoadMaxAttempts:    loadAttempts,
		LoadRetryDelay:     loadDelay,

		RunInterval:     runInterval,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.APIKey == "" {
		return nil, errors.New("OPENWEATHER_API_KEY is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.City == "" {
		return nil, errors.New("WEATHER_CITY must not be empty")
	}
	if cfg.ExtractMaxAttempts < 1 {
		return nil, errors.New("EXTRACT_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.LoadMaxAttempts < 1 {
		return nil, errors.New("LOAD_MAX_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}
