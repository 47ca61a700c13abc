// Package metrics holds the process-wide prometheus collectors
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "codeexplainer"

var (
	// ExplanationsTotal counts terminal pipeline outcomes
	ExplanationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "explain",
			Name:      "explanations_total",
			Help:      "Explanation requests by language, mode and outcome",
		},
		[]string{"language", "mode", "status"},
	)

	// RateLimitedTotal counts rejected admissions
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "explain",
			Name:      "rate_limited_total",
			Help:      "Explanation requests rejected by the rate limiter",
		},
	)

	// SanitizerWarningsTotal counts suspicious pattern hits
	SanitizerWarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sanitize",
			Name:      "warnings_total",
			Help:      "Suspicious patterns seen in submitted code",
		},
		[]string{"pattern"},
	)

	// GenerationDuration times calls to the generative backend
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "explain",
			Name:      "generation_duration_seconds",
			Help:      "Generative backend call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider", "stream", "outcome"},
	)

	// HTTPRequestsTotal counts served requests by route pattern
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration times served requests by route pattern
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "route"},
	)
)

// Handler serves the default registry
func Handler() http.Handler { return promhttp.Handler() }

// ObserveHTTP records one served request; route is the chi pattern so ids do not explode cardinality
func ObserveHTTP(r *http.Request, status int, elapsed time.Duration) {
	route := "unmatched"
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			route = p
		}
	}
	HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
}

// ObserveGeneration records one generative call
func ObserveGeneration(provider string, stream bool, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	GenerationDuration.WithLabelValues(provider, strconv.FormatBool(stream), outcome).Observe(elapsed.Seconds())
}
