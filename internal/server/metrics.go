package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scaleread_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scaleread_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	readRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scaleread_read_requests_total",
			Help: "Total number of scale read requests",
		},
		[]string{"transport", "status"}, // transport: http, websocket
	)

	readDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scaleread_read_duration_seconds",
			Help:    "Inference duration in seconds",
			Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"transport"},
	)

	boxesDetected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scaleread_boxes_detected",
			Help:    "Number of display regions detected per image",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25},
		},
	)

	readingsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scaleread_readings_parsed_total",
			Help: "Read requests that produced a parsed weight value",
		},
		[]string{"unit"},
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scaleread_upload_size_bytes",
			Help:    "Size of uploaded images in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scaleread_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scaleread_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

// observeResult records per-inference metrics for any transport.
func observeResult(transport string, result *ReadResult) {
	readRequestsTotal.WithLabelValues(transport, "success").Inc()
	readDuration.WithLabelValues(transport).Observe(float64(result.DurationMs) / 1000.0)
	boxesDetected.Observe(float64(len(result.Boxes)))
	if result.Value != nil && result.Unit != nil {
		unit := *result.Unit
		if unit == "" {
			unit = "none"
		}
		readingsParsed.WithLabelValues(unit).Inc()
	}
}
