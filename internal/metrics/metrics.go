package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the ledger service
type Metrics struct {
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SyncRuns        *prometheus.CounterVec
	SyncRecords     *prometheus.CounterVec
	PendingRecords  *prometheus.GaugeVec
}

// NewMetrics creates a new metrics instance
func NewMetrics(serviceName string) *Metrics {
	return &Metrics{
		RequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sabiboss",
				Subsystem: serviceName,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sabiboss",
				Subsystem: serviceName,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SyncRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sabiboss",
				Subsystem: serviceName,
				Name:      "sync_runs_total",
				Help:      "Total number of sync passes",
			},
			[]string{"ledger"},
		),
		SyncRecords: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sabiboss",
				Subsystem: serviceName,
				Name:      "sync_records_total",
				Help:      "Per-record sync outcomes",
			},
			[]string{"ledger", "outcome"}, // outcome: synced, failed, retry
		),
		PendingRecords: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "sabiboss",
				Subsystem: serviceName,
				Name:      "pending_records",
				Help:      "Records still awaiting reconciliation after the last sync pass",
			},
			[]string{"ledger"},
		),
	}
}

// Middleware returns a gin middleware recording request counts and durations.
func Middleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RequestCounter.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
