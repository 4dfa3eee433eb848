package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/internhub/server/internal/api/middleware"
	"github.com/internhub/server/internal/api/problem"
	"github.com/internhub/server/internal/auth"
)

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return r.PathValue(key)
}

// bodyError marks a request body that could not be decoded.
type bodyError struct {
	err error
}

func (e *bodyError) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.err)
}

func (e *bodyError) Unwrap() error {
	return e.err
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &bodyError{err: errors.New("empty body")}
		}
		return &bodyError{err: err}
	}
	return nil
}

// caller returns the authenticated identity. Routes that call it are always
// behind RequireAuth, so a missing identity is answered with 401.
func caller(w http.ResponseWriter, r *http.Request, env string) (auth.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthenticated, "Unauthenticated", problem.ErrUnauthenticated, env,
			problem.WithDetail("No token, authorization denied"))
		return auth.Identity{}, false
	}
	return identity, true
}
