package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// handleHealth is a liveness check. It always reports ok while the process
// is serving.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.startedAt).String(),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(health)
}

// handleReady is a readiness check covering templates, the backing store
// and the rate limiter.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.sales.Ready(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["records"] = map[string]interface{}{
		"count":  s.sales.Count(),
		"status": "ok",
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(response)
}

// handleMetrics exposes counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	totalRequests := atomic.LoadInt64(&s.appMetrics.totalRequests)
	created := atomic.LoadInt64(&s.appMetrics.recordsCreated)
	updated := atomic.LoadInt64(&s.appMetrics.recordsUpdated)
	deleted := atomic.LoadInt64(&s.appMetrics.recordsDeleted)
	rateLimitHits := atomic.LoadInt64(&s.secMetrics.rateLimitHits)
	suspicious := atomic.LoadInt64(&s.secMetrics.suspiciousRequests)
	uptime := time.Since(s.appMetrics.startedAt)

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", totalRequests)

	fmt.Fprintf(w, "# HELP sale_records Current number of sale records\n")
	fmt.Fprintf(w, "# TYPE sale_records gauge\n")
	fmt.Fprintf(w, "sale_records %d\n\n", s.sales.Count())

	fmt.Fprintf(w, "# HELP sale_mutations_total Total sale record mutations by operation\n")
	fmt.Fprintf(w, "# TYPE sale_mutations_total counter\n")
	fmt.Fprintf(w, "sale_mutations_total{op=\"create\"} %d\n", created)
	fmt.Fprintf(w, "sale_mutations_total{op=\"update\"} %d\n", updated)
	fmt.Fprintf(w, "sale_mutations_total{op=\"delete\"} %d\n\n", deleted)

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total number of rate limited requests\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitHits)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total number of suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", suspicious)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Number of client IPs currently tracked\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", s.rateLimiter.ActiveClients())

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", uptime.Seconds())
}
