package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/internhub/server/internal/api/problem"
	"github.com/internhub/server/internal/auth"
)

type contextKeyAuth string

const identityKey contextKeyAuth = "identity"

// TokenAuthenticator turns a bearer token into the caller's identity.
type TokenAuthenticator interface {
	Authenticate(token string) (auth.Identity, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func RequireAuth(authenticator TokenAuthenticator, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authenticator == nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthenticated, "Unauthenticated", problem.ErrUnauthenticated, env)
				return
			}

			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthenticated, "Unauthenticated", err, env,
					problem.WithDetail("No token, authorization denied"))
				return
			}

			identity, err := authenticator.Authenticate(token)
			if err != nil {
				detail := "Token is not valid"
				if errors.Is(err, auth.ErrMissingToken) {
					detail = "No token, authorization denied"
				}
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthenticated, "Unauthenticated", err, env,
					problem.WithDetail(detail))
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole admits identities holding one of the allowed roles. It must run
// after RequireAuth.
func RequireRole(env string, allowed ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthenticated, "Unauthenticated", problem.ErrUnauthenticated, env,
					problem.WithDetail("No token, authorization denied"))
				return
			}
			if !auth.HasRole(identity.Role, allowed...) {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Forbidden", problem.ErrForbidden, env,
					problem.WithDetail("Access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ContextWithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	if ctx == nil {
		return auth.Identity{}, false
	}
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	if !ok || identity.AccountID == "" {
		return auth.Identity{}, false
	}
	return identity, true
}
