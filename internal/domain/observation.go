package domain

import "time"

// Data quality flags derived from the humidity reading.
const (
	QualityGood       = "Good"
	QualitySuspicious = "Suspicious"
)

// RawObservation is one weather reading as returned by the source API,
// before any normalization. Immutable once produced; lives for one run.
type RawObservation struct {
	ObservedAt  time.Time `json:"observed_at"`
	City        string    `json:"city"`
	TempKelvin  float64   `json:"temp_kelvin"`
	Humidity    int       `json:"humidity"`
	Description string    `json:"description"`
}

// ProcessedObservation is the normalized form destined for the sink table.
// City is title-cased, TempCelsius is derived from TempKelvin, and
// DataQuality classifies the humidity reading.
type ProcessedObservation struct {
	RawObservation

	TempCelsius float64 `json:"temp_celsius"`
	DataQuality string  `json:"data_quality"`
}
