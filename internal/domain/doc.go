// Package domain models a single weather observation as it moves through the
// ETL pipeline.
//
// # Data Source
//
// Observations come from the OpenWeather current-weather API
// (https://openweathermap.org/current). One GET per scheduled run returns a
// JSON body with the temperature, humidity, and a free-text description for
// the configured city. Temperatures are requested in the API's standard unit
// system, which is Kelvin.
//
// # Lifecycle
//
// A RawObservation is produced once per run by the extractor and is never
// mutated. The transformer derives a ProcessedObservation from it: Celsius
// temperature (kelvin − 273.15, rounded to 2 decimals), a title-cased city
// name, and a categorical data-quality flag. The loader persists the
// processed form as one row keyed on (observation date, city), so replaying
// a run never produces a duplicate.
//
// # Data Quality
//
// The quality flag is a pure function of humidity: "Good" for values in
// [20, 100], "Suspicious" otherwise. Humidity readings below 20% are
// physically possible but rare enough in the source region to warrant
// flagging for review; values outside [0, 100] are a contract break and
// reject the record entirely.
package domain
