package handlers

import (
	"context"
	"net/http"

	"github.com/internhub/server/internal/auth"
	"github.com/internhub/server/internal/domain/applications"
)

type ApplicationService interface {
	Apply(ctx context.Context, caller auth.Identity, params applications.ApplyParams) (*applications.Application, error)
	ListMine(ctx context.Context, caller auth.Identity) ([]applications.Application, error)
	ListForInternship(ctx context.Context, caller auth.Identity, internshipID string) ([]applications.Application, error)
	UpdateStatus(ctx context.Context, caller auth.Identity, id string, status string) (*applications.Application, error)
}

type ApplicationsHandler struct {
	service ApplicationService
	env     string
}

func NewApplicationsHandler(service ApplicationService, env string) *ApplicationsHandler {
	return &ApplicationsHandler{service: service, env: env}
}

// Apply handles POST /api/applications
func (h *ApplicationsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.env)
	if !ok {
		return
	}

	var req applications.ApplyParams
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.env)
		return
	}

	created, err := h.service.Apply(r.Context(), identity, req)
	if err != nil {
		writeError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, newApplicationResponse(created))
}

// Mine handles GET /api/applications/my-applications
func (h *ApplicationsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.env)
	if !ok {
		return
	}

	list, err := h.service.ListMine(r.Context(), identity)
	if err != nil {
		writeError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, newApplicationList(list))
}

// ForInternship handles GET /api/applications/internship/{id}
func (h *ApplicationsHandler) ForInternship(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.env)
	if !ok {
		return
	}

	list, err := h.service.ListForInternship(r.Context(), identity, pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, newApplicationList(list))
}

// UpdateStatus handles PUT /api/applications/{id}/status
func (h *ApplicationsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.env)
	if !ok {
		return
	}

	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.env)
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), identity, pathParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, newApplicationResponse(updated))
}
