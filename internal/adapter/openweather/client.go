// Package openweather implements the pipeline Extractor against the
// OpenWeather current-weather API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-etl-job/internal/domain"
)

// Client fetches one current-weather observation per Extract call.
type Client struct {
	apiKey     string
	query      string // "City,CC" as accepted by the API's q parameter
	units      string
	baseURL    string
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *slog.Logger
}

// DefaultBaseURL is the production endpoint for current weather readings.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// NewClient creates an OpenWeather client for a fixed city. An empty baseURL
// selects the production endpoint; the timeout bounds the whole request
// round trip.
func NewClient(apiKey, city, units, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		query:   city,
		units:   units,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		clock:  clockwork.NewRealClock(),
		logger: logger,
	}
}

// Extract performs one GET against the weather API and parses the response
// into a RawObservation. Transport errors, 5xx responses, and undecodable
// bodies yield a retryable ErrSourceUnavailable; a well-formed 4xx yields
// the same class marked permanent, since it indicates a bad credential or
// query rather than a transient outage.
func (c *Client) Extract(ctx context.Context) (domain.RawObservation, error) {
	params := url.Values{
		"q":     {c.query},
		"appid": {c.apiKey},
		"units": {c.units},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.RawObservation{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RawObservation{}, fmt.Errorf("%w: weather request: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := fmt.Errorf("%w: status %d: %s", domain.ErrSourceUnavailable, resp.StatusCode, body)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return domain.RawObservation{}, domain.Permanent(statusErr)
		}
		return domain.RawObservation{}, statusErr
	}

	var payload currentWeather
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.RawObservation{}, fmt.Errorf("%w: decode response: %v", domain.ErrSourceUnavailable, err)
	}

	obs := domain.RawObservation{
		ObservedAt:  c.observedAt(payload.Dt),
		City:        c.cityName(payload.Name),
		TempKelvin:  payload.Main.Temp,
		Humidity:    payload.Main.Humidity,
		Description: firstDescription(payload.Weather),
	}

	c.logger.Debug("observation extracted",
		"city", obs.City,
		"temp_kelvin", obs.TempKelvin,
		"humidity", obs.Humidity,
	)
	return obs, nil
}

// observedAt prefers the API's own reading timestamp, falling back to the
// clock when the field is absent.
func (c *Client) observedAt(dt int64) time.Time {
	if dt > 0 {
		return time.Unix(dt, 0).UTC()
	}
	return c.clock.Now().UTC()
}

// cityName prefers the API's canonical name. When the response omits it,
// the configured query wins, minus any ",CC" country suffix.
func (c *Client) cityName(name string) string {
	if name != "" {
		return name
	}
	city, _, _ := strings.Cut(c.query, ",")
	return city
}

func firstDescription(items []weatherItem) string {
	if len(items) == 0 {
		return ""
	}
	return items[0].Description
}

// OpenWeather API response types.

type currentWeather struct {
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []weatherItem `json:"weather"`
}

type weatherItem struct {
	Description string `json:"description"`
}
