// Package audit records who changed what on postings and applications.
package audit

import (
	"net"
	"net/http"
	"time"

	"github.com/internhub/server/internal/api/middleware"
	"github.com/rs/zerolog"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry is a single audit record.
type Entry struct {
	Action       string
	AccountID    string
	Role         string
	ResourceType string
	ResourceID   string
	IPAddress    string
	Status       string
	StatusCode   int
	RequestID    string
	Duration     time.Duration
}

// Logger writes audit entries as structured log lines tagged audit=true.
type Logger struct {
	logger zerolog.Logger
	now    func() time.Time
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{
		logger: logger.With().Bool("audit", true).Logger(),
		now:    time.Now,
	}
}

func (l *Logger) Log(entry Entry) {
	level := zerolog.InfoLevel
	if entry.Status == StatusFailure {
		level = zerolog.WarnLevel
	}

	event := l.logger.WithLevel(level).
		Str("action", entry.Action).
		Str("account_id", entry.AccountID).
		Str("role", entry.Role).
		Str("ip", entry.IPAddress).
		Str("status", entry.Status).
		Int("status_code", entry.StatusCode).
		Dur("duration", entry.Duration)
	if entry.ResourceType != "" {
		event = event.Str("resource_type", entry.ResourceType)
	}
	if entry.ResourceID != "" {
		event = event.Str("resource_id", entry.ResourceID)
	}
	if entry.RequestID != "" {
		event = event.Str("request_id", entry.RequestID)
	}
	event.Msg("audit")
}

// Middleware records one entry per request once the handler has answered.
// It runs inside RequireAuth so the caller's identity is known. The resource
// id is the {id} path value, when the route has one.
func (l *Logger) Middleware(action, resourceType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := l.now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			entry := Entry{
				Action:       action,
				ResourceType: resourceType,
				ResourceID:   r.PathValue("id"),
				IPAddress:    clientIP(r),
				StatusCode:   rec.code(),
				RequestID:    middleware.GetRequestID(r.Context()),
				Duration:     l.now().Sub(start),
				Status:       StatusSuccess,
			}
			if entry.StatusCode >= http.StatusBadRequest {
				entry.Status = StatusFailure
			}
			if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
				entry.AccountID = identity.AccountID
				entry.Role = string(identity.Role)
			}
			l.Log(entry)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) code() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
