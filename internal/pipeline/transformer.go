package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/weather-etl-job/internal/domain"
)

// ObservationTransformer implements Transformer using the pure domain
// transform functions.
type ObservationTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates an ObservationTransformer.
func NewTransformer(logger *slog.Logger) *ObservationTransformer {
	return &ObservationTransformer{logger: logger}
}

func (t *ObservationTransformer) Transform(raw domain.RawObservation) (domain.ProcessedObservation, error) {
	processed, err := domain.Process(raw)
	if err != nil {
		return domain.ProcessedObservation{}, err
	}

	if processed.DataQuality == domain.QualitySuspicious {
		t.logger.Warn("suspicious observation",
			"city", processed.City, "humidity", processed.Humidity)
	}
	return processed, nil
}
