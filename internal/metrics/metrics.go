// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationsTotal counts orchestrator runs by result
	// (success, no_results, suggest_failed, not_configured).
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemuse_recommendations_total",
			Help: "Recommendation requests by result",
		},
		[]string{"result"},
	)

	// UpstreamRequests counts calls to the language model and metadata services.
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemuse_upstream_requests_total",
			Help: "Outbound requests to external services by outcome",
		},
		[]string{"service", "outcome"},
	)

	// CandidatesDropped counts title candidates that did not resolve to a movie.
	CandidatesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinemuse_candidates_dropped_total",
			Help: "Title candidates discarded because metadata resolution failed",
		},
	)

	// CacheLookups counts metadata cache hits and misses.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemuse_cache_lookups_total",
			Help: "Metadata cache lookups by result",
		},
		[]string{"kind", "result"},
	)

	// CircuitBreakerState is 0 closed, 1 open, 2 half-open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinemuse_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	// HTTPRequestDuration tracks handler latency by route template.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinemuse_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"route", "method", "status"},
	)

	// RateLimitHits counts requests rejected with 429.
	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinemuse_rate_limit_hits_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
	)
)

// ObserveUpstream records the outcome of one outbound call.
func ObserveUpstream(service string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequests.WithLabelValues(service, outcome).Inc()
}

// ObserveHTTP records a finished HTTP request.
func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
