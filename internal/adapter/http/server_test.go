package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/weather-etl-job/internal/adapter/http"
	"github.com/couchcryptid/weather-etl-job/internal/pipeline"
)

type mockReporter struct {
	readyErr error
	status   pipeline.RunStatus
	hasRun   bool
}

func (m *mockReporter) CheckReadiness(_ context.Context) error { return m.readyErr }

func (m *mockReporter) LastRun() (pipeline.RunStatus, bool) { return m.status, m.hasRun }

func newTestServer(reporter *mockReporter) *httpadapter.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", reporter, logger)
}

func get(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&mockReporter{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(&mockReporter{}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503BeforeFirstSuccess(t *testing.T) {
	reporter := &mockReporter{readyErr: errors.New("no successful run yet")}
	rec := get(t, newTestServer(reporter), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Contains(t, body["error"], "no successful run")
}

func TestStatuszBeforeFirstRun(t *testing.T) {
	rec := get(t, newTestServer(&mockReporter{}), "/statusz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no runs yet", body["status"])
}

func TestStatuszReturnsLastRun(t *testing.T) {
	started := time.Date(2026, time.August, 23, 6, 0, 0, 0, time.UTC)
	reporter := &mockReporter{
		hasRun: true,
		status: pipeline.RunStatus{
			RunID:      "run-1",
			StartedAt:  started,
			FinishedAt: started.Add(2 * time.Second),
			Success:    false,
			Error:      "weather sink unavailable: connection refused",
		},
	}

	rec := get(t, newTestServer(reporter), "/statusz")
	assert.Equal(t, http.StatusOK, rec.Code)

	var status pipeline.RunStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "run-1", status.RunID)
	assert.False(t, status.Success)
	assert.Contains(t, status.Error, "sink unavailable")
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockReporter{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
}
