// Package metrics exposes Prometheus instrumentation for the HTTP
// surface and the classification pipeline behind it.
package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	classificationsTotal *prometheus.CounterVec
	confidence           *prometheus.HistogramVec
	classifyDuration     prometheus.Histogram

	cacheLookupsTotal *prometheus.CounterVec
	cacheWritesTotal  *prometheus.CounterVec

	throttledTotal   *prometheus.CounterVec
	shedTotal        prometheus.Counter
	llmFailuresTotal *prometheus.CounterVec
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()
	serviceLabel := prometheus.Labels{"service": service}

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "inquiry",
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total HTTP requests processed.",
			ConstLabels: serviceLabel,
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "inquiry",
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: serviceLabel,
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "inquiry",
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: serviceLabel,
		},
	)
	classificationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "inquiry",
			Subsystem:   "classify",
			Name:        "results_total",
			Help:        "Total classifications by category and source.",
			ConstLabels: serviceLabel,
		},
		[]string{"category", "source"},
	)
	confidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "inquiry",
			Subsystem:   "classify",
			Name:        "confidence",
			Help:        "Distribution of classification confidence.",
			Buckets:     []float64{0.3, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
			ConstLabels: serviceLabel,
		},
		[]string{"category"},
	)
	classifyDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "inquiry",
			Subsystem:   "classify",
			Name:        "duration_seconds",
			Help:        "End-to-end classification duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: serviceLabel,
		},
	)
	cacheLookupsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "inquiry",
			Subsystem:   "cache",
			Name:        "lookups_total",
			Help:        "Cache lookups by outcome.",
			ConstLabels: serviceLabel,
		},
		[]string{"outcome"},
	)
	cacheWritesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "inquiry",
			Subsystem:   "cache",
			Name:        "writes_total",
			Help:        "Cache writes by TTL tier.",
			ConstLabels: serviceLabel,
		},
		[]string{"tier"},
	)
	throttledTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "inquiry",
			Subsystem:   "ratelimit",
			Name:        "throttled_total",
			Help:        "Requests rejected by the per-client rate limiter.",
			ConstLabels: serviceLabel,
		},
		[]string{"path"},
	)
	shedTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "inquiry",
			Subsystem:   "http",
			Name:        "shed_total",
			Help:        "Requests shed because the concurrency limit was saturated.",
			ConstLabels: serviceLabel,
		},
	)
	llmFailuresTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "inquiry",
			Subsystem:   "llm",
			Name:        "failures_total",
			Help:        "LLM classification failures by reason.",
			ConstLabels: serviceLabel,
		},
		[]string{"reason"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		classificationsTotal,
		confidence,
		classifyDuration,
		cacheLookupsTotal,
		cacheWritesTotal,
		throttledTotal,
		shedTotal,
		llmFailuresTotal,
	)

	return &ServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		classificationsTotal: classificationsTotal,
		confidence:           confidence,
		classifyDuration:     classifyDuration,
		cacheLookupsTotal:    cacheLookupsTotal,
		cacheWritesTotal:     cacheWritesTotal,
		throttledTotal:       throttledTotal,
		shedTotal:            shedTotal,
		llmFailuresTotal:     llmFailuresTotal,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

var inquiryIDPath = regexp.MustCompile(`^/api/v1/inquiries/[^/]+$`)

func normalizePath(path string) string {
	switch path {
	case "/api/v1/inquiries/classify", "/api/v1/inquiries/stats":
		return path
	}
	if inquiryIDPath.MatchString(path) {
		return "/api/v1/inquiries/{inquiry_id}"
	}
	return path
}

func (m *ServerMetrics) RecordClassification(category string, confidence float64, fallback bool, duration time.Duration) {
	source := "llm"
	if fallback {
		source = "fallback"
	}
	m.classificationsTotal.WithLabelValues(category, source).Inc()
	m.confidence.WithLabelValues(category).Observe(confidence)
	m.classifyDuration.Observe(duration.Seconds())
}

func (m *ServerMetrics) RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(outcome).Inc()
}

func (m *ServerMetrics) RecordCacheWrite(tier string) {
	if tier == "" {
		tier = "unknown"
	}
	m.cacheWritesTotal.WithLabelValues(tier).Inc()
}

func (m *ServerMetrics) RecordThrottled(path string) {
	m.throttledTotal.WithLabelValues(normalizePath(path)).Inc()
}

func (m *ServerMetrics) RecordShed() {
	m.shedTotal.Inc()
}

func (m *ServerMetrics) RecordLLMFailure(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	m.llmFailuresTotal.WithLabelValues(reason).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
