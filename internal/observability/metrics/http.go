package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal          *prometheus.CounterVec
	uploadBytesTotal      *prometheus.CounterVec
	downloadsTotal        *prometheus.CounterVec
	analysisRequestsTotal *prometheus.CounterVec
	browseResults         *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drive",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drive",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "drive",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drive",
			Subsystem: "files",
			Name:      "uploads_total",
			Help:      "Total file uploads by kind and status.",
		},
		[]string{"service", "kind", "status"},
	)
	uploadBytesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drive",
			Subsystem: "files",
			Name:      "upload_bytes_total",
			Help:      "Total bytes accepted through uploads.",
		},
		[]string{"service"},
	)
	downloadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drive",
			Subsystem: "files",
			Name:      "downloads_total",
			Help:      "Total file content downloads.",
		},
		[]string{"service", "status"},
	)
	analysisRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drive",
			Subsystem: "ai",
			Name:      "analysis_requests_total",
			Help:      "Total AI analysis requests accepted by the API.",
		},
		[]string{"service", "status"},
	)
	browseResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drive",
			Subsystem: "files",
			Name:      "browse_results",
			Help:      "Distribution of result counts per browse request.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
		[]string{"service", "view"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadsTotal,
		uploadBytesTotal,
		downloadsTotal,
		analysisRequestsTotal,
		browseResults,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		uploadsTotal:          uploadsTotal,
		uploadBytesTotal:      uploadBytesTotal,
		downloadsTotal:        downloadsTotal,
		analysisRequestsTotal: analysisRequestsTotal,
		browseResults:         browseResults,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses per-file routes so metric cardinality stays flat.
func normalizePath(path string) string {
	if rest, ok := strings.CutPrefix(path, "/v1/files/"); ok && rest != "" {
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/v1/files/{file_id}" + rest[idx:]
		}
		return "/v1/files/{file_id}"
	}
	return path
}

func (m *HTTPServerMetrics) RecordUpload(service, kind string, err error, sizeBytes int64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.uploadsTotal.WithLabelValues(service, kind, status).Inc()
	if err == nil && sizeBytes > 0 {
		m.uploadBytesTotal.WithLabelValues(service).Add(float64(sizeBytes))
	}
}

func (m *HTTPServerMetrics) RecordDownload(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.downloadsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordAnalysisRequest(service string, err error) {
	status := "accepted"
	if err != nil {
		status = "rejected"
	}
	m.analysisRequestsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordBrowse(service, view string, resultCount int) {
	m.browseResults.WithLabelValues(service, view).Observe(float64(resultCount))
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
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
