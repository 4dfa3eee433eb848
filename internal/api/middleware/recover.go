package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/internhub/server/internal/api/problem"
	"github.com/rs/zerolog"
)

// Recover converts a panic in any downstream handler into a 500 problem
// response. The stack trace is logged, never sent to the client.
func Recover(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				zerolog.Ctx(r.Context()).Error().
					Str("panic", fmt.Sprint(rec)).
					Bytes("stack", debug.Stack()).
					Str("path", r.URL.Path).
					Msg("handler panic recovered")

				problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Internal failure",
					fmt.Errorf("panic: %v", rec), env, problem.WithDetail("Server error"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
