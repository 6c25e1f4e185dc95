// Package metrics exports database statement metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Skryldev/userdb/db"
)

// Collector implements db.MetricsCollector with one counter and one histogram,
// both labelled by repository operation.
type Collector struct {
	// QueriesTotal counts statements by operation and status (ok/error).
	QueriesTotal *prometheus.CounterVec
	// QueryDuration tracks statement latency in seconds by operation.
	QueryDuration *prometheus.HistogramVec
}

// NewCollector registers the collector's metrics with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Collector{
		QueriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "userdb_queries_total",
				Help: "Total database statements by operation and status",
			},
			[]string{"operation", "status"},
		),
		QueryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "userdb_query_duration_seconds",
				Help:    "Database statement duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),
	}
}

// RecordQuery implements db.MetricsCollector.
func (c *Collector) RecordQuery(operation string, d time.Duration, success bool) {
	status := "ok"
	if !success {
		status = "error"
	}
	c.QueriesTotal.WithLabelValues(operation, status).Inc()
	c.QueryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Hook returns a db.Hook feeding c.
func (c *Collector) Hook() db.Hook { return db.NewMetricsHook(c) }

var _ db.MetricsCollector = (*Collector)(nil)
