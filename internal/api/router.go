package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/internhub/server/internal/api/handlers"
	"github.com/internhub/server/internal/api/middleware"
	"github.com/internhub/server/internal/audit"
	"github.com/internhub/server/internal/auth"
	"github.com/internhub/server/internal/config"
	"github.com/internhub/server/internal/domain/accounts"
	"github.com/internhub/server/internal/domain/applications"
	"github.com/internhub/server/internal/domain/internships"
	"github.com/internhub/server/internal/metrics"
	"github.com/internhub/server/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Dependencies are the collaborators the router wires into handlers. The
// caller owns their lifecycle.
type Dependencies struct {
	Config  config.Config
	Logger  zerolog.Logger
	Store   storage.Repository
	Tokens  *auth.JWTManager
	Limiter middleware.Limiter
	Build   BuildInfo
}

// Services are the domain services behind the HTTP handlers.
type Services struct {
	Accounts     *accounts.Service
	Internships  *internships.Service
	Applications *applications.Service
}

// NewServices builds the domain services over a store.
func NewServices(store storage.Repository, tokens *auth.JWTManager, logger zerolog.Logger) Services {
	accountsService := accounts.NewService(store.Accounts(), tokens, logger)
	internshipsService := internships.NewService(store.Internships(), accountsService, logger)
	applicationsService := applications.NewService(store.Applications(), internshipsService, accountsService, logger)
	return Services{
		Accounts:     accountsService,
		Internships:  internshipsService,
		Applications: applicationsService,
	}
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	env := cfg.Environment
	logger := deps.Logger

	services := NewServices(deps.Store, deps.Tokens, logger)

	authHandler := handlers.NewAuthHandler(services.Accounts, env)
	internshipsHandler := handlers.NewInternshipsHandler(services.Internships, env)
	applicationsHandler := handlers.NewApplicationsHandler(services.Applications, env)
	health := handlers.NewHealthChecker(deps.Store, deps.Build.withDefaults().Version, deps.Build.withDefaults().GitCommit)

	limit := middleware.RateLimit(cfg.RateLimit, deps.Limiter, env)
	loginTier := middleware.WithRateLimitTierHandler(middleware.TierLogin)
	requireAuth := middleware.RequireAuth(deps.Tokens, env)
	auditLog := audit.NewLogger(logger)

	public := func(h http.HandlerFunc) http.Handler {
		return limit(h)
	}
	authenticated := func(h http.HandlerFunc, roles ...auth.Role) http.Handler {
		var next http.Handler = h
		if len(roles) > 0 {
			next = middleware.RequireRole(env, roles...)(next)
		}
		return limit(requireAuth(next))
	}
	audited := func(action, resourceType string, h http.HandlerFunc) http.HandlerFunc {
		return auditLog.Middleware(action, resourceType)(h).ServeHTTP
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", health.Healthz())
	mux.Handle("/readyz", health.Readyz())
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/version", VersionHandler(deps.Build))
	mux.Handle("/api/openapi.json", OpenAPIHandler())

	mux.Handle("POST /api/auth/register", loginTier(limit(http.HandlerFunc(authHandler.Register))))
	mux.Handle("POST /api/auth/login", loginTier(limit(http.HandlerFunc(authHandler.Login))))
	mux.Handle("GET /api/auth/me", authenticated(authHandler.Me))

	mux.Handle("/api/internships", methodMux(map[string]http.Handler{
		http.MethodGet:  public(internshipsHandler.List),
		http.MethodPost: authenticated(audited("internship.create", "internship", internshipsHandler.Create), auth.RoleEmployer, auth.RoleAdmin),
	}))
	mux.Handle("GET /api/internships/mine", authenticated(internshipsHandler.Mine, auth.RoleEmployer, auth.RoleAdmin))
	mux.Handle("/api/internships/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    public(internshipsHandler.Get),
		http.MethodDelete: authenticated(audited("internship.delete", "internship", internshipsHandler.Delete), auth.RoleEmployer, auth.RoleAdmin),
	}))
	mux.Handle("PUT /api/internships/{id}/status", authenticated(audited("internship.status", "internship", internshipsHandler.UpdateStatus), auth.RoleEmployer, auth.RoleAdmin))

	mux.Handle("POST /api/applications", authenticated(applicationsHandler.Apply, auth.RoleStudent))
	mux.Handle("GET /api/applications/my-applications", authenticated(applicationsHandler.Mine, auth.RoleStudent))
	mux.Handle("GET /api/applications/internship/{id}", authenticated(applicationsHandler.ForInternship, auth.RoleEmployer, auth.RoleAdmin))
	mux.Handle("PUT /api/applications/{id}/status", authenticated(audited("application.status", "application", applicationsHandler.UpdateStatus), auth.RoleEmployer, auth.RoleAdmin))

	var handler http.Handler = mux
	handler = middleware.Timeout(cfg.Server.RequestTimeout)(handler)
	handler = middleware.RequestSize(cfg.Server.MaxBodyBytes)(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.SecurityHeaders(cfg.IsProduction())(handler)
	handler = middleware.Recover(env)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
