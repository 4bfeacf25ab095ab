package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/couchcryptid/weather-etl-job/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRecord(t *testing.T) {
	observedAt := time.Date(2026, time.August, 23, 9, 30, 0, 0, time.UTC)

	obs := domain.ProcessedObservation{
		RawObservation: domain.RawObservation{
			ObservedAt:  observedAt,
			City:        "Bournemouth",
			TempKelvin:  300.15,
			Humidity:    55,
			Description: "clear sky",
		},
		TempCelsius: 27.00,
		DataQuality: domain.QualityGood,
	}

	rec := NewRecord(obs)

	assert.Equal(t, "2026-08-23", rec.ObservedDate)
	assert.Equal(t, "Bournemouth", rec.City)
	assert.Equal(t, observedAt, rec.ObservedAt)
	assert.Equal(t, 300.15, rec.TempKelvin)
	assert.Equal(t, 27.00, rec.TempCelsius)
	assert.Equal(t, 55, rec.Humidity)
	assert.Equal(t, "clear sky", rec.Description)
	assert.Equal(t, domain.QualityGood, rec.DataQuality)
	assert.Zero(t, rec.ID, "identity is generated by the database")
}

func TestNewRecord_NormalizesToUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// 23:30 local on the 22nd is already the 23rd in UTC; the date key must
	// follow UTC so overlapping runs agree on it.
	obs := domain.ProcessedObservation{
		RawObservation: domain.RawObservation{
			ObservedAt: time.Date(2026, time.August, 22, 23, 30, 0, 0, loc),
			City:       "Bournemouth",
		},
	}

	rec := NewRecord(obs)
	assert.Equal(t, "2026-08-23", rec.ObservedDate)
}

func TestLoader_Load_MissingDSN(t *testing.T) {
	l := NewLoader("", time.Second, discardLogger())

	err := l.Load(context.Background(), domain.ProcessedObservation{})

	require.ErrorIs(t, err, domain.ErrSinkUnavailable)
	assert.False(t, domain.Retryable(err), "a missing DSN is a configuration fault, not an outage")
}

func TestLoader_Load_OpenFailure(t *testing.T) {
	l := NewLoader("postgres://unreachable", time.Second, discardLogger())
	l.open = func(string) (*gorm.DB, error) {
		return nil, errors.New("connection refused")
	}

	err := l.Load(context.Background(), domain.ProcessedObservation{})

	require.ErrorIs(t, err, domain.ErrSinkUnavailable)
	assert.True(t, domain.Retryable(err), "connection failures are transient")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWeatherRecord_TableName(t *testing.T) {
	assert.Equal(t, "weather_records", WeatherRecord{}.TableName())
}
