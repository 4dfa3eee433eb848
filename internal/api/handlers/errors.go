package handlers

import (
	"errors"
	"net/http"

	"github.com/internhub/server/internal/api/problem"
	"github.com/internhub/server/internal/domain/accounts"
	"github.com/internhub/server/internal/domain/applications"
	"github.com/internhub/server/internal/domain/internships"
	"github.com/internhub/server/internal/validation"
)

type errorMapping struct {
	target error
	status int
	typ    string
	title  string
	detail string
}

// errorMappings turns domain sentinels into problem responses. First match wins.
var errorMappings = []errorMapping{
	{accounts.ErrDuplicateAccount, http.StatusBadRequest, problem.TypeDuplicateAccount, "Duplicate account", "User already exists"},
	{accounts.ErrInvalidCredentials, http.StatusBadRequest, problem.TypeInvalidCredentials, "Invalid credentials", "Invalid credentials"},
	{accounts.ErrAdminRegistration, http.StatusForbidden, problem.TypeForbidden, "Forbidden", "Admin accounts cannot be registered"},
	{accounts.ErrNotFound, http.StatusNotFound, problem.TypeNotFound, "Not found", "User not found"},
	{internships.ErrNotFound, http.StatusNotFound, problem.TypeNotFound, "Not found", "Internship not found"},
	{internships.ErrForbidden, http.StatusForbidden, problem.TypeForbidden, "Forbidden", "Access denied"},
	{internships.ErrInvalidTransition, http.StatusConflict, problem.TypeInvalidTransition, "Invalid status transition", ""},
	{internships.ErrStatusConflict, http.StatusConflict, problem.TypeInvalidTransition, "Invalid status transition", "Status changed concurrently, reload and retry"},
	{applications.ErrNotFound, http.StatusNotFound, problem.TypeNotFound, "Not found", "Application not found"},
	{applications.ErrForbidden, http.StatusForbidden, problem.TypeForbidden, "Forbidden", "Access denied"},
	{applications.ErrAlreadyApplied, http.StatusBadRequest, problem.TypeAlreadyApplied, "Already applied", "Already applied"},
}

// writeError maps any service error to a problem response.
func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypeRequestTooLarge, "Request too large", err, env,
			problem.WithDetail("Request body exceeds the size limit"))
		return
	}

	if verr, ok := validation.AsError(err); ok {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, env,
			problem.WithDetail(verr.Message), problem.WithErrors(verr.Fields))
		return
	}

	var filterErr internships.FilterError
	if errors.As(err, &filterErr) {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, env,
			problem.WithDetail("Invalid filter"), problem.WithErrors(map[string]string{filterErr.Field: filterErr.Message}))
		return
	}

	var body *bodyError
	if errors.As(err, &body) {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, env,
			problem.WithDetail("Invalid request body"))
		return
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := m.detail
		if detail == "" {
			detail = err.Error()
		}
		problem.Write(w, r, m.status, m.typ, m.title, err, env, problem.WithDetail(detail))
		return
	}

	problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Server error", err, env)
}
