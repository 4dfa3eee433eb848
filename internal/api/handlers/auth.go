package handlers

import (
	"context"
	"net/http"

	"github.com/internhub/server/internal/domain/accounts"
)

// AccountService is the identity surface the auth handlers need.
type AccountService interface {
	Register(ctx context.Context, params accounts.RegisterParams) (*accounts.Session, error)
	Login(ctx context.Context, email, password string) (*accounts.Session, error)
	Me(ctx context.Context, accountID string) (*accounts.Account, error)
}

type AuthHandler struct {
	accounts AccountService
	env      string
}

func NewAuthHandler(accounts AccountService, env string) *AuthHandler {
	return &AuthHandler{accounts: accounts, env: env}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req accounts.RegisterParams
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.env)
		return
	}

	session, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.env)
		return
	}

	session, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.env)
	if !ok {
		return
	}

	account, err := h.accounts.Me(r.Context(), identity.AccountID)
	if err != nil {
		writeError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(account))
}
