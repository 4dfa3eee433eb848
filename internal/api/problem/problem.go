package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

const typeBase = "https://internhub.dev/problems/"

// Problem type URIs. The final path segment doubles as the stable error code.
const (
	TypeDuplicateAccount   = typeBase + "duplicate-account"
	TypeInvalidCredentials = typeBase + "invalid-credentials"
	TypeUnauthenticated    = typeBase + "unauthenticated"
	TypeForbidden          = typeBase + "forbidden"
	TypeNotFound           = typeBase + "not-found"
	TypeAlreadyApplied     = typeBase + "already-applied"
	TypeValidation         = typeBase + "validation-failure"
	TypeInvalidTransition  = typeBase + "invalid-transition"
	TypeRateLimited        = typeBase + "rate-limited"
	TypeRequestTooLarge    = typeBase + "request-too-large"
	TypeInternal           = typeBase + "internal-failure"
)

var codes = map[string]string{
	TypeDuplicateAccount:   "DuplicateAccount",
	TypeInvalidCredentials: "InvalidCredentials",
	TypeUnauthenticated:    "Unauthenticated",
	TypeForbidden:          "Forbidden",
	TypeNotFound:           "NotFound",
	TypeAlreadyApplied:     "AlreadyApplied",
	TypeValidation:         "ValidationFailure",
	TypeInvalidTransition:  "InvalidTransition",
	TypeRateLimited:        "RateLimited",
	TypeRequestTooLarge:    "RequestTooLarge",
	TypeInternal:           "InternalFailure",
}

type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Code     string            `json:"code,omitempty"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithInstance(instance string) Option {
	return func(p *ProblemDetails) {
		p.Instance = instance
	}
}

// WithErrors attaches per-field validation messages.
func WithErrors(errs map[string]string) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

// CodeFor returns the stable error code for a problem type URI.
func CodeFor(typ string) string {
	return codes[typ]
}

func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	problem := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
		Code:   CodeFor(typ),
	}

	for _, opt := range opts {
		opt(&problem)
	}

	if problem.Detail == "" && err != nil {
		if status < 500 && (env == "development" || env == "test") {
			problem.Detail = err.Error()
		} else {
			problem.Detail = http.StatusText(status)
		}
	}

	if problem.Instance == "" && r != nil {
		problem.Instance = r.URL.Path
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		var event *zerolog.Event
		if status >= 500 {
			event = logger.Error()
		} else {
			event = logger.Warn()
		}
		event.
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	}

	WriteProblem(w, problem)
}

func WriteProblem(w http.ResponseWriter, problem ProblemDetails) {
	payload, err := json.Marshal(problem)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(problem.Status)
	_, _ = w.Write(payload)
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrRateLimited     = errors.New("rate limited")
)
