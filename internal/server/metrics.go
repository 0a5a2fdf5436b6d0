package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moore_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moore_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Tracing metrics
	traceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moore_trace_requests_total",
			Help: "Total number of trace requests",
		},
		[]string{"source", "status"}, // source: image, grid, websocket; status: success or an error type
	)

	traceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moore_trace_duration_seconds",
			Help:    "Contour tracing duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"source"},
	)

	contourPoints = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moore_contour_points",
			Help:    "Number of points in traced contours",
			Buckets: prometheus.ExponentialBuckets(4, 4, 8),
		},
		[]string{"source"},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moore_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: minute, hour, requests, data
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moore_upload_size_bytes",
			Help:    "Size of uploaded images in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moore_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moore_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

// observeTrace records the outcome of one trace.
func observeTrace(source, status string, seconds float64, points int) {
	traceRequestsTotal.WithLabelValues(source, status).Inc()
	if status == "success" {
		traceDuration.WithLabelValues(source).Observe(seconds)
		contourPoints.WithLabelValues(source).Observe(float64(points))
	}
}
