package domain

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// absoluteZeroKelvin is the lowest physically meaningful temperature. A
// reading at or below zero Kelvin means the source never filled the field.
const absoluteZeroKelvin = 0

// Process derives a ProcessedObservation from a raw reading. Pure function:
// no I/O, deterministic, safe to apply repeatedly with identical output.
// Returns ErrMalformedRecord when required fields are absent or humidity is
// outside [0, 100].
func Process(raw RawObservation) (ProcessedObservation, error) {
	if err := validate(raw); err != nil {
		return ProcessedObservation{}, err
	}

	out := ProcessedObservation{
		RawObservation: raw,
		TempCelsius:    CelsiusFromKelvin(raw.TempKelvin),
		DataQuality:    QualityFlag(raw.Humidity),
	}
	out.City = NormalizeCity(raw.City)
	return out, nil
}

func validate(raw RawObservation) error {
	if strings.TrimSpace(raw.City) == "" {
		return fmt.Errorf("%w: city is empty", ErrMalformedRecord)
	}
	if raw.TempKelvin <= absoluteZeroKelvin {
		return fmt.Errorf("%w: temperature %.2fK is not a valid reading", ErrMalformedRecord, raw.TempKelvin)
	}
	if raw.Humidity < 0 || raw.Humidity > 100 {
		return fmt.Errorf("%w: humidity %d%% outside [0,100]", ErrMalformedRecord, raw.Humidity)
	}
	return nil
}

// CelsiusFromKelvin converts a Kelvin reading to Celsius, rounded to two
// decimal places.
func CelsiusFromKelvin(kelvin float64) float64 {
	return math.Round((kelvin-273.15)*100) / 100
}

// QualityFlag classifies a humidity percentage: "Good" within [20, 100],
// "Suspicious" otherwise.
func QualityFlag(humidity int) string {
	if humidity >= 20 && humidity <= 100 {
		return QualityGood
	}
	return QualitySuspicious
}

// NormalizeCity title-cases a city name, e.g. "bournemouth" → "Bournemouth",
// "NEW YORK" → "New York".
func NormalizeCity(city string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(city)))
}
