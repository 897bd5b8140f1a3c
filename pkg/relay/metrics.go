package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "periscope_active_connections",
		Help: "Number of connected WebSocket clients.",
	})

	metricCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "periscope_commands_total",
		Help: "Commands received, by command type.",
	}, []string{"type"})

	metricCommandErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "periscope_command_errors_total",
		Help: "Commands that produced an error result, by command type.",
	}, []string{"type"})

	metricQueueRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "periscope_queue_rejections_total",
		Help: "Commands rejected because the relay queue was full.",
	})

	metricScreenshotBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "periscope_screenshot_bytes",
		Help:    "Size of encoded screenshots pushed to clients.",
		Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
	})
)
