package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/internhub/server/internal/auth"
	"github.com/internhub/server/internal/domain/internships"
)

type InternshipService interface {
	List(ctx context.Context, filters internships.Filters) ([]internships.Internship, error)
	ListMine(ctx context.Context, caller auth.Identity) ([]internships.Internship, error)
	Get(ctx context.Context, id string) (*internships.Internship, error)
	Create(ctx context.Context, caller auth.Identity, params internships.CreateParams) (*internships.Internship, error)
	Delete(ctx context.Context, caller auth.Identity, id string) error
	UpdateStatus(ctx context.Context, caller auth.Identity, id string, status string) (*internships.Internship, error)
}

type InternshipsHandler struct {
	service InternshipService
	env     string
}

func NewInternshipsHandler(service InternshipService, env string) *InternshipsHandler {
	return &InternshipsHandler{service: service, env: env}
}

// IgnoredFiltersHeader echoes accepted query parameters that did not filter.
const IgnoredFiltersHeader = "X-Ignored-Filters"

type StatusRequest struct {
	Status string `json:"status"`
}

// List handles GET /api/internships
func (h *InternshipsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := internships.ParseFilters(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.env)
		return
	}

	list, err := h.service.List(r.Context(), filters)
	if err != nil {
		writeError(w, r, err, h.env)
		return
	}

	if ignored := filters.Ignored(); len(ignored) > 0 {
		joined := strings.Join(ignored, ",")
		w.Header().Set(IgnoredFiltersHeader, joined)
		w.Header().Set("Warning", fmt.Sprintf(`299 - "ignored filters: %s"`, joined))
	}
	writeJSON(w, http.StatusOK, newInternshipList(list))
}

// Mine handles GET /api/internships/mine
func (h *InternshipsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.env)
	if !ok {
		return
	}

	list, err := h.service.ListMine(r.Context(), identity)
	if err != nil {
		writeError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, newInternshipList(list))
}

// Get handles GET /api/internships/{id}
func (h *InternshipsHandler) Get(w http.ResponseWriter, r *http.Request) {
	posting, err := h.service.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, newInternshipResponse(posting))
}

// Create handles POST /api/internships
func (h *InternshipsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.env)
	if !ok {
		return
	}

	var req internships.CreateParams
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.env)
		return
	}

	created, err := h.service.Create(r.Context(), identity, req)
	if err != nil {
		writeError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, newInternshipResponse(created))
}

// UpdateStatus handles PUT /api/internships/{id}/status
func (h *InternshipsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, newInternshipResponse(updated))
}

// Delete handles DELETE /api/internships/{id}
func (h *InternshipsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.env)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity, pathParam(r, "id")); err != nil {
		writeError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Removed"})
}
