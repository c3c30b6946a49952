package core

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for one Server. Each Server owns
// its own registry so several servers can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	StorageOpsTotal     *prometheus.CounterVec
	BytesReceivedTotal  prometheus.Counter
	BytesSentTotal      prometheus.Counter
}

// NewMetrics creates and registers the fcstore collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fcstore_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fcstore_http_request_duration_seconds",
				Help:    "Request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		StorageOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fcstore_storage_operations_total",
				Help: "Bucket store operations by type and outcome",
			},
			[]string{"operation", "status"},
		),
		BytesReceivedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fcstore_bytes_received_total",
				Help: "Total bytes received (request bodies)",
			},
		),
		BytesSentTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fcstore_bytes_sent_total",
				Help: "Total bytes sent (response bodies)",
			},
		),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StorageOpsTotal,
		m.BytesReceivedTotal,
		m.BytesSentTotal,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOperation counts one bucket store operation.
func (m *Metrics) ObserveOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.StorageOpsTotal.WithLabelValues(operation, status).Inc()
}

// NormalizePath maps request paths onto route templates so bucket and item
// names do not end up as label values.
func NormalizePath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}

	switch strings.Count(trimmed, "/") {
	case 0:
		return "/{bucket}"
	case 1:
		return "/{bucket}/{file}"
	default:
		return "other"
	}
}
