// Package metrics exposes request and backend call counters for Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/falijedan/falijedan/internal/backend"
)

// Recorder owns a private registry so tests and multiple servers never
// collide on the global one.
type Recorder struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	sessions        prometheus.GaugeFunc
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "falijedan",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "falijedan",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "falijedan",
			Name:      "backend_calls_total",
			Help:      "Backend facade calls by operation, collection and outcome.",
		}, []string{"op", "collection", "outcome"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "falijedan",
			Name:      "backend_call_duration_seconds",
			Help:      "Backend facade call latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	r.registry.MustRegister(
		r.requests,
		r.requestDuration,
		r.backendCalls,
		r.backendDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// TrackSessions publishes the number of live gate sessions.
func (r *Recorder) TrackSessions(count func() int) {
	if r.sessions != nil {
		r.registry.Unregister(r.sessions)
	}
	r.sessions = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "falijedan",
		Name:      "sessions_active",
		Help:      "Signed-in sessions held by the gate.",
	}, func() float64 { return float64(count()) })
	r.registry.MustRegister(r.sessions)
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Middleware counts requests by the ServeMux pattern that handled them.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, req)

		route := req.Pattern
		if route == "" {
			route = "unmatched"
		}
		r.requests.WithLabelValues(route, req.Method, strconv.Itoa(wrapped.status)).Inc()
		r.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (r *Recorder) observe(op string, collection backend.Collection, start time.Time, err error) {
	r.backendCalls.WithLabelValues(op, string(collection), outcome(err)).Inc()
	r.backendDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, backend.ErrNotFound):
		return "not_found"
	case errors.Is(err, backend.ErrNoSession), errors.Is(err, backend.ErrInvalidCredentials):
		return "unauthenticated"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
