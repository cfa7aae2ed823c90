package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Every method is safe on a nil
// receiver so components can run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Widget pipeline metrics
	ClassLoads        *prometheus.CounterVec
	Renders           *prometheus.CounterVec
	ViewsDisplayed    prometheus.Counter
	Sanitized         *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// System metrics
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalErrors    int64   `json:"total_errors"`
	ClassLoads     int64   `json:"class_loads"`
	ClassFailures  int64   `json:"class_failures"`
	ViewsDisplayed int64   `json:"views_displayed"`
	RenderFailures int64   `json:"render_failures"`
	TotalDuration  float64 `json:"total_duration_seconds"` // sum of all request durations
	RequestCount   int64   `json:"request_count"`          // count for averaging
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htmlmanager_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "htmlmanager_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "htmlmanager_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "htmlmanager_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Widget pipeline metrics
		ClassLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htmlmanager_class_loads_total",
				Help: "Total number of widget class resolutions",
			},
			[]string{"source", "result"},
		),
		Renders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htmlmanager_renders_total",
				Help: "Total number of mime renders",
			},
			[]string{"mime_type", "result"},
		),
		ViewsDisplayed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "htmlmanager_views_displayed_total",
				Help: "Total number of views attached into a target element",
			},
		),
		Sanitized: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htmlmanager_sanitize_total",
				Help: "Total number of sanitized HTML fragments",
			},
			[]string{"policy"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "htmlmanager_operation_duration_seconds",
				Help:    "Duration of pipeline operations in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"operation", "result"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "htmlmanager_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordClassLoad records a class resolution. source is "builtin" or
// "external"; result is "ok", "version_mismatch" or an error kind.
func (m *Metrics) RecordClassLoad(source, result string) {
	if m == nil {
		return
	}
	m.ClassLoads.WithLabelValues(source, result).Inc()

	m.mu.Lock()
	m.snapshot.ClassLoads++
	if result != "ok" && result != "version_mismatch" {
		m.snapshot.ClassFailures++
	}
	m.mu.Unlock()
}

// RecordRender records a mime render outcome.
func (m *Metrics) RecordRender(mimeType, result string) {
	if m == nil {
		return
	}
	m.Renders.WithLabelValues(mimeType, result).Inc()
	if result != "ok" {
		m.mu.Lock()
		m.snapshot.RenderFailures++
		m.mu.Unlock()
	}
}

// IncViewsDisplayed counts a view attached by DisplayView.
func (m *Metrics) IncViewsDisplayed() {
	if m == nil {
		return
	}
	m.ViewsDisplayed.Inc()
	m.mu.Lock()
	m.snapshot.ViewsDisplayed++
	m.mu.Unlock()
}

// RecordSanitize counts a sanitized fragment.
func (m *Metrics) RecordSanitize(policy string) {
	if m == nil {
		return
	}
	m.Sanitized.WithLabelValues(policy).Inc()
}

// RecordOperation records the duration of a pipeline operation.
func (m *Metrics) RecordOperation(operation, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation, result).Observe(duration.Seconds())
}

// Snapshot returns the current values for the JSON API.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
