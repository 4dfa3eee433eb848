package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/internhub/server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedHandler(t *testing.T, cfg config.RateLimitConfig, tier RateLimitTier) http.Handler {
	t.Helper()
	limiter := NewMemoryLimiter(cfg)
	t.Cleanup(limiter.Stop)

	inner := RateLimit(cfg, limiter, "test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return WithRateLimitTierHandler(tier)(inner)
}

func TestLoginRateLimit_BlocksAfterBurst(t *testing.T) {
	handler := newLimitedHandler(t, config.RateLimitConfig{LoginPerMinute: 3}, TierLogin)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "192.168.1.100:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "192.168.1.100:12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RateLimited", decodeProblem(t, rec).Code)

	// A different client still has its own bucket.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "192.168.1.101:12345"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_ZeroDisablesTier(t *testing.T) {
	handler := newLimitedHandler(t, config.RateLimitConfig{PublicPerMinute: 0}, TierPublic)

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/internships", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_HealthExempt(t *testing.T) {
	handler := newLimitedHandler(t, config.RateLimitConfig{PublicPerMinute: 1}, TierPublic)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestMemoryLimiter_Cleanup(t *testing.T) {
	limiter := NewMemoryLimiter(config.RateLimitConfig{PublicPerMinute: 10})
	defer limiter.Stop()

	require.NotNil(t, limiter.limiter(TierPublic, "1.2.3.4"))
	limiter.cleanup(time.Now().Add(time.Hour))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Empty(t, limiter.limiters)
}

func TestMemoryLimiter_StopIsIdempotent(t *testing.T) {
	limiter := NewMemoryLimiter(config.RateLimitConfig{})
	assert.NotPanics(t, func() {
		limiter.Stop()
		limiter.Stop()
	})
}

func TestClientKey(t *testing.T) {
	trusted := []string{"10.0.0.0/8"}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.1.2.3")
	assert.Equal(t, "203.0.113.9", clientKey(req, trusted))

	req.RemoteAddr = "198.51.100.7:4444"
	assert.Equal(t, "198.51.100.7", clientKey(req, trusted), "untrusted peers cannot spoof X-Forwarded-For")

	req.RemoteAddr = "10.1.2.3:4444"
	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "203.0.113.10")
	assert.Equal(t, "203.0.113.10", clientKey(req, trusted))

	assert.Equal(t, "10.1.2.3", clientKey(req, nil))
}
