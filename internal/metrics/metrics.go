// Package metrics provides Prometheus instrumentation for the wealth ledger.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AddsTotal counts accepted add operations, partitioned by outcome
	// ("create" or "merge").
	AddsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsy_ledger_adds_total",
		Help: "Accepted add operations by outcome",
	}, []string{"outcome"})

	// SellsTotal counts accepted sell operations.
	SellsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finsy_ledger_sells_total",
		Help: "Accepted sell operations",
	})

	// RemovesTotal counts position removals.
	RemovesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finsy_ledger_removes_total",
		Help: "Position removals",
	})

	// RejectedCandidates counts adds/sells rejected before mutation.
	RejectedCandidates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsy_ledger_rejected_total",
		Help: "Candidates rejected by validation or merge preconditions",
	}, []string{"reason"})

	// Holdings tracks the current number of positions in the ledger.
	Holdings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "finsy_ledger_holdings",
		Help: "Number of positions currently held",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "finsy_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsy_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "finsy_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
