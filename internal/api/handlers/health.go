package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/internhub/server/internal/metrics"
)

// HealthCheck represents the readiness status of the server
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// Pinger is the store reachability probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker answers liveness and readiness probes
type HealthChecker struct {
	store     Pinger
	version   string
	gitCommit string
}

func NewHealthChecker(store Pinger, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		store:     store,
		version:   version,
		gitCommit: gitCommit,
	}
}

// Healthz reports that the process is serving. It never touches the store.
func (h *HealthChecker) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Readyz reports whether the store is reachable.
func (h *HealthChecker) Readyz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check if server is shutting down (graceful shutdown in progress)
		select {
		case <-r.Context().Done():
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status": "shutting_down",
			})
			return
		default:
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]CheckResult{
			"database": h.checkDatabase(ctx),
		}

		overallStatus := "ready"
		statusCode := http.StatusOK
		for _, check := range checks {
			if check.Status == "fail" {
				overallStatus = "unavailable"
				statusCode = http.StatusServiceUnavailable
				break
			}
		}
		if statusCode == http.StatusOK {
			metrics.ReadinessStatus.Set(1)
		} else {
			metrics.ReadinessStatus.Set(0)
		}

		writeJSON(w, statusCode, HealthCheck{
			Status:    overallStatus,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	start := time.Now()

	if h.store == nil {
		return CheckResult{Status: "fail", Message: "Store not initialized"}
	}

	err := h.store.Ping(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		message := "Store ping failed"
		if ctx.Err() == context.DeadlineExceeded {
			message = "Store ping timed out after 2 seconds"
		}
		return CheckResult{Status: "fail", Message: message, LatencyMs: latency}
	}
	return CheckResult{Status: "pass", LatencyMs: latency}
}
