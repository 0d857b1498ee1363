// Package metrics holds Prometheus instruments used across the site.  All
// collectors are registered with the global registry, so importing this
// package is enough to expose them on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

var (
	ContactSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact-form submissions by outcome.",
		}, []string{"outcome"})

	ContactFieldErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_field_errors_total",
			Help: "Contact-form field violations by field.",
		}, []string{"field"})

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "code"})
)

func init() {
	prometheus.MustRegister(
		ContactSubmissions,
		ContactFieldErrors,
		RequestDuration,
	)
}

// Instrument records RequestDuration for every request.  The route label is
// the chi pattern, so IDs in paths never explode cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
