package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHealthHandler_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil, zap.NewNop()).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]Check
		wantStatus int
		wantFailed []string
	}{
		{name: "no checks", wantStatus: http.StatusOK},
		{
			name:       "all pass",
			checks:     map[string]Check{"redis": func(context.Context) error { return nil }},
			wantStatus: http.StatusOK,
		},
		{
			name: "one fails",
			checks: map[string]Check{
				"redis": func(context.Context) error { return errors.New("connection refused") },
				"s3":    func(context.Context) error { return nil },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantFailed: []string{"redis"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler(tt.checks, zap.NewNop()).Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body.Checks, len(tt.wantFailed))
			for _, name := range tt.wantFailed {
				assert.Contains(t, body.Checks, name)
			}
		})
	}
}
