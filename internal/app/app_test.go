package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridpulse/internal/infrastructure"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	infrastructure.ResetLoggerForTesting()
	base := t.TempDir()
	t.Setenv("GRIDPULSE_PATHS_DATA_DIR", base)
	t.Setenv("GRIDPULSE_PATHS_EXPORTS_DIR", base+"/exports")
	t.Setenv("GRIDPULSE_PATHS_LOGS_DIR", base+"/logs")
	t.Setenv("GRIDPULSE_LOGGING_OUTPUT", "console")

	app, err := NewApplication()
	require.NoError(t, err)
	return app
}

func TestApplicationRoutes(t *testing.T) {
	app := newTestApplication(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"healthz", http.MethodGet, "/api/healthz", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"dataset before load", http.MethodGet, "/api/dataset", http.StatusNotFound},
		{"aggregates before load", http.MethodGet, "/api/aggregates?group_by=hour", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestApplicationUploadFlow(t *testing.T) {
	app := newTestApplication(t)

	csv := "timestamp,production,consumption,coal,hydro,fossil_fuel,nuclear,wind,solar,biomass\n" +
		"2024-03-04 00:00:00,5000,4500,1500,900,1200,800,350,150,100\n"

	req := httptest.NewRequest(http.MethodPost, "/api/dataset", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dataset/summary", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export/csv", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplicationRequestIDHeader(t *testing.T) {
	app := newTestApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
