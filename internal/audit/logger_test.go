package audit

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/internhub/server/internal/api/middleware"
	"github.com/internhub/server/internal/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), buf.String())
	return line
}

func TestMiddlewareRecordsSuccess(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf))

	mux := http.NewServeMux()
	mux.Handle("DELETE /api/internships/{id}", logger.Middleware("internship.delete", "internship")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"message":"Removed"}`))
		}),
	))

	req := httptest.NewRequest(http.MethodDelete, "/api/internships/01HV8Z5P2W9Q6M3K7T1R4N8B0C", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	req = req.WithContext(middleware.ContextWithIdentity(req.Context(), auth.Identity{AccountID: "acc-1", Role: auth.RoleAdmin}))
	mux.ServeHTTP(httptest.NewRecorder(), req)

	line := decodeLine(t, &buf)
	assert.Equal(t, true, line["audit"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "internship.delete", line["action"])
	assert.Equal(t, "internship", line["resource_type"])
	assert.Equal(t, "01HV8Z5P2W9Q6M3K7T1R4N8B0C", line["resource_id"])
	assert.Equal(t, "acc-1", line["account_id"])
	assert.Equal(t, "admin", line["role"])
	assert.Equal(t, "203.0.113.7", line["ip"])
	assert.Equal(t, StatusSuccess, line["status"])
	assert.EqualValues(t, http.StatusOK, line["status_code"])
}

func TestMiddlewareRecordsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf))

	handler := logger.Middleware("application.status", "application")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}),
	)
	req := httptest.NewRequest(http.MethodPut, "/api/applications/x/status", nil)
	req = req.WithContext(middleware.ContextWithIdentity(req.Context(), auth.Identity{AccountID: "acc-2", Role: auth.RoleEmployer}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := decodeLine(t, &buf)
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, StatusFailure, line["status"])
	assert.EqualValues(t, http.StatusForbidden, line["status_code"])
	assert.NotContains(t, line, "resource_id")
}
