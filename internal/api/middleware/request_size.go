package middleware

import (
	"net/http"
)

const (
	// DefaultMaxBodySize is 1MB for API endpoints
	DefaultMaxBodySize int64 = 1 << 20
)

// RequestSize limits the size of incoming request bodies.
//
// Oversized bodies surface as *http.MaxBytesError from the decoder, which the
// handlers turn into 413 responses.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
