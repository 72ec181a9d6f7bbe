package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	analyzeTotal    *prometheus.CounterVec
	analyzeDuration *prometheus.HistogramVec
	analyzeInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	analyzeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drive",
			Subsystem: "worker",
			Name:      "file_analyze_total",
			Help:      "Total analyzed files by status.",
		},
		[]string{"service", "status"},
	)
	analyzeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drive",
			Subsystem: "worker",
			Name:      "file_analyze_duration_seconds",
			Help:      "File analysis duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	analyzeInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "drive",
			Subsystem: "worker",
			Name:      "file_analyze_in_flight",
			Help:      "Number of in-flight analysis tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drive",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between analysis request and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(analyzeTotal, analyzeDuration, analyzeInFlight, queueLag)

	return &WorkerMetrics{
		registry:        registry,
		analyzeTotal:    analyzeTotal,
		analyzeDuration: analyzeDuration,
		analyzeInFlight: analyzeInFlight,
		queueLag:        queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartAnalysis() {
	m.analyzeInFlight.Inc()
}

func (m *WorkerMetrics) FinishAnalysis(service string, duration time.Duration, err error) {
	m.analyzeInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.analyzeTotal.WithLabelValues(service, status).Inc()
	m.analyzeDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
