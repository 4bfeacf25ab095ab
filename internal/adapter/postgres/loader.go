// Package postgres implements the pipeline Loader against a Postgres table,
// using an upsert keyed on (observed_date, city) so re-runs are idempotent.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/couchcryptid/weather-etl-job/internal/domain"
)

// WeatherRecord is the persisted form of a processed observation. The unique
// index on (observed_date, city) is the idempotency contract: overlapping or
// replayed runs for the same day and city collapse into one row.
type WeatherRecord struct {
	ID           uint      `gorm:"primaryKey"`
	ObservedDate string    `gorm:"type:date;not null;uniqueIndex:idx_weather_records_date_city"`
	City         string    `gorm:"size:128;not null;uniqueIndex:idx_weather_records_date_city"`
	ObservedAt   time.Time `gorm:"not null"`
	TempKelvin   float64   `gorm:"type:decimal(6,2)"`
	TempCelsius  float64   `gorm:"type:decimal(6,2)"`
	Humidity     int
	Description  string
	DataQuality  string    `gorm:"size:16"`
	CreatedAt    time.Time // insertion timestamp, set by gorm
}

// TableName fixes the table name independent of gorm pluralization rules.
func (WeatherRecord) TableName() string { return "weather_records" }

// NewRecord maps a processed observation onto its table row.
func NewRecord(obs domain.ProcessedObservation) WeatherRecord {
	return WeatherRecord{
		ObservedDate: obs.ObservedAt.UTC().Format("2006-01-02"),
		City:         obs.City,
		ObservedAt:   obs.ObservedAt.UTC(),
		TempKelvin:   obs.TempKelvin,
		TempCelsius:  obs.TempCelsius,
		Humidity:     obs.Humidity,
		Description:  obs.Description,
		DataQuality:  obs.DataQuality,
	}
}

// Loader writes one observation row per Load call over a connection scoped
// to that call.
type Loader struct {
	dsn     string
	timeout time.Duration
	logger  *slog.Logger

	// open is swappable in tests.
	open func(dsn string) (*gorm.DB, error)
}

// NewLoader creates a Loader for the given connection string. The timeout
// bounds each Load call, connection setup included.
func NewLoader(dsn string, timeout time.Duration, logger *slog.Logger) *Loader {
	return &Loader{
		dsn:     dsn,
		timeout: timeout,
		logger:  logger,
		open:    openGorm,
	}
}

func openGorm(dsn string) (*gorm.DB, error) {
	return gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// Load acquires a scoped connection, upserts one row, and releases the
// connection on every exit path. Any connection or statement failure yields
// a retryable ErrSinkUnavailable; gorm executes the single insert inside a
// transaction, so a failed statement commits nothing.
func (l *Loader) Load(ctx context.Context, obs domain.ProcessedObservation) error {
	if l.dsn == "" {
		return domain.Permanent(fmt.Errorf("%w: database url is not configured", domain.ErrSinkUnavailable))
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	db, err := l.open(l.dsn)
	if err != nil {
		return fmt.Errorf("%w: open connection: %v", domain.ErrSinkUnavailable, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%w: unwrap connection: %v", domain.ErrSinkUnavailable, err)
	}
	defer sqlDB.Close()

	rec := NewRecord(obs)
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "observed_date"}, {Name: "city"}},
		DoNothing: true,
	}).Create(&rec)
	if result.Error != nil {
		return fmt.Errorf("%w: insert weather record: %v", domain.ErrSinkUnavailable, result.Error)
	}

	if result.RowsAffected == 0 {
		l.logger.Info("row already present, skipped",
			"city", rec.City, "observed_date", rec.ObservedDate)
		return nil
	}

	l.logger.Info("weather record inserted",
		"city", rec.City,
		"observed_date", rec.ObservedDate,
		"temp_celsius", rec.TempCelsius,
		"data_quality", rec.DataQuality,
	)
	return nil
}

// Migrate creates or updates the weather_records table. Called from
// integration tests and first-time setups; scheduled runs assume the table
// exists.
func (l *Loader) Migrate(ctx context.Context) error {
	db, err := l.open(l.dsn)
	if err != nil {
		return fmt.Errorf("%w: open connection: %v", domain.ErrSinkUnavailable, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%w: unwrap connection: %v", domain.ErrSinkUnavailable, err)
	}
	defer sqlDB.Close()

	if err := db.WithContext(ctx).AutoMigrate(&WeatherRecord{}); err != nil {
		return fmt.Errorf("%w: migrate weather_records: %v", domain.ErrSinkUnavailable, err)
	}
	return nil
}
