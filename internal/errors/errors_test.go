package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridpulse/internal/dataprocessing"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusNotFound, "NOT_FOUND", "thing not found")
	assert.Equal(t, "thing not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)

	detailed := SchemaInvalidError([]string{"production", "wind"})
	assert.Equal(t, http.StatusUnprocessableEntity, detailed.StatusCode)
	assert.Equal(t, "SCHEMA_INVALID", detailed.ErrorCode)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(422, TypeSchemaInvalid, "Schema Invalid", "missing columns", "/api/dataset").
		WithExtension("missing_columns", []string{"wind"})

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeSchemaInvalid, decoded["type"])
	assert.Equal(t, float64(422), decoded["status"])
	assert.Equal(t, []any{"wind"}, decoded["missing_columns"])
}

func TestErrorHandler_HandleError(t *testing.T) {
	handler := NewErrorHandler(slog.Default(), false)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "schema error",
			err:        &dataprocessing.SchemaError{Missing: []string{"biomass"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeSchemaInvalid,
		},
		{
			name:       "api error",
			err:        ErrDatasetNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeDatasetNotLoaded,
		},
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("loading: %w", ErrRateLimitExceeded),
			wantStatus: http.StatusTooManyRequests,
			wantType:   TypeRateLimit,
		},
		{
			name:       "context cancelled",
			err:        context.Canceled,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "unknown error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
			rec := httptest.NewRecorder()

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/test", body["instance"])
		})
	}
}

func TestErrorHandler_NilError(t *testing.T) {
	handler := NewErrorHandler(slog.Default(), false)
	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
