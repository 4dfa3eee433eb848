package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/internhub/server/internal/api/problem"
	"github.com/internhub/server/internal/config"
	"golang.org/x/time/rate"
)

type RateLimitTier string

const (
	TierPublic RateLimitTier = "public"
	// TierLogin covers credential endpoints (login and register).
	TierLogin RateLimitTier = "login"
)

const rateLimitWindow = time.Minute

type rateLimitKey string

const rateLimitTierKey rateLimitKey = "rateLimitTier"

// Limiter decides whether a client may make another request in a tier.
type Limiter interface {
	Allow(ctx context.Context, tier RateLimitTier, key string) bool
}

func WithRateLimitTier(ctx context.Context, tier RateLimitTier) context.Context {
	return context.WithValue(ctx, rateLimitTierKey, tier)
}

func WithRateLimitTierHandler(tier RateLimitTier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithRateLimitTier(r.Context(), tier)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit enforces the limiter for the tier stored in the request context.
// The tier must be set before this middleware runs, so route-level tiers wrap
// the limiter rather than the other way round.
func RateLimit(cfg config.RateLimitConfig, limiter Limiter, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || r.URL.Path == "/healthz" || r.URL.Path == "/readyz" {
				next.ServeHTTP(w, r)
				return
			}

			tier := TierPublic
			if value, ok := r.Context().Value(rateLimitTierKey).(RateLimitTier); ok {
				tier = value
			}

			if !limiter.Allow(r.Context(), tier, clientKey(r, cfg.TrustedProxyCIDRs)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
				problem.Write(w, r, http.StatusTooManyRequests, problem.TypeRateLimited, "Too many requests", problem.ErrRateLimited, env,
					problem.WithDetail("Too many requests, please try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// TierLimits maps each tier to its per-minute allowance. Zero disables a tier.
func TierLimits(cfg config.RateLimitConfig) map[RateLimitTier]int {
	return map[RateLimitTier]int{
		TierPublic: cfg.PublicPerMinute,
		TierLogin:  cfg.LoginPerMinute,
	}
}

// MemoryLimiter is a per-process token bucket limiter keyed by tier and client.
type MemoryLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*limiterEntry
	perMinute   map[RateLimitTier]int
	ttl         time.Duration
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(cfg config.RateLimitConfig) *MemoryLimiter {
	store := &MemoryLimiter{
		limiters:    make(map[string]*limiterEntry),
		perMinute:   TierLimits(cfg),
		ttl:         15 * time.Minute,
		stopCleanup: make(chan struct{}),
	}

	go store.cleanupLoop()

	return store
}

func (s *MemoryLimiter) Allow(_ context.Context, tier RateLimitTier, key string) bool {
	limiter := s.limiter(tier, key)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (s *MemoryLimiter) limiter(tier RateLimitTier, key string) *rate.Limiter {
	limit := s.perMinute[tier]
	if limit <= 0 {
		return nil
	}

	lookup := string(tier) + ":" + key

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.limiters[lookup]; ok {
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	interval := rateLimitWindow / time.Duration(limit)
	limiter := rate.NewLimiter(rate.Every(interval), limit)
	s.limiters[lookup] = &limiterEntry{
		limiter:  limiter,
		lastSeen: time.Now(),
	}
	return limiter
}

func (s *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.stopCleanup:
			return
		}
	}
}

// cleanup drops limiters idle for longer than the TTL.
func (s *MemoryLimiter) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.limiters {
		if now.Sub(entry.lastSeen) > s.ttl {
			delete(s.limiters, key)
		}
	}
}

// Stop shuts down the cleanup goroutine. It is safe to call more than once.
func (s *MemoryLimiter) Stop() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
}

// clientKey identifies the caller. X-Forwarded-For and X-Real-IP are only
// honoured when the connection comes from a trusted proxy CIDR.
func clientKey(r *http.Request, trustedProxyCIDRs []string) string {
	if r == nil {
		return ""
	}

	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	if isTrustedProxy(remoteIP, trustedProxyCIDRs) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			parts := strings.Split(forwarded, ",")
			return strings.TrimSpace(parts[0])
		}
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return strings.TrimSpace(realIP)
		}
	}

	return remoteIP
}

func isTrustedProxy(ip string, trustedCIDRs []string) bool {
	if len(trustedCIDRs) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidrStr := range trustedCIDRs {
		_, cidr, err := net.ParseCIDR(cidrStr)
		if err != nil {
			continue
		}
		if cidr.Contains(parsedIP) {
			return true
		}
	}

	return false
}
