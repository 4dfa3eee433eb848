package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/internhub/server/internal/api/middleware"
	"github.com/internhub/server/internal/api/problem"
	"github.com/internhub/server/internal/auth"
	"github.com/stretchr/testify/require"
)

const (
	testPostingID     = "01HYX3KQW7ERTV9XNBM2P8QJZF"
	testApplicationID = "01HYX3KQW7ERTV9XNBM2P8QJZA"
	testEmployerID    = "01HYX3M0000000000000000001"
	testStudentID     = "01HYX3M0000000000000000002"
)

var (
	employerIdentity = auth.Identity{AccountID: testEmployerID, Role: auth.RoleEmployer}
	studentIdentity  = auth.Identity{AccountID: testStudentID, Role: auth.RoleStudent}
)

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withIdentity(r *http.Request, identity auth.Identity) *http.Request {
	return r.WithContext(middleware.ContextWithIdentity(r.Context(), identity))
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) problem.ProblemDetails {
	t.Helper()
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p problem.ProblemDetails
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	return p
}
