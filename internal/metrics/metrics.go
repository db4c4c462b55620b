package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons reported by the query pipelines
const (
	SkipMalformed  = "malformed"
	SkipDuplicate  = "duplicate"
	SkipHidden     = "hidden"
	SkipNamespace  = "namespace"
	SkipPermission = "permission"
	SkipMissing    = "missing"
	SkipStatus     = "status"
	SkipChain      = "chain"
	SkipEmpty      = "empty"
)

// Metrics holds the collectors of the discussion queries
type Metrics struct {
	Registry *prometheus.Registry

	// QueryDuration tracks query latency by query name
	QueryDuration *prometheus.HistogramVec

	// QueryResults tracks result sizes by query name
	QueryResults *prometheus.HistogramVec

	// LinesExamined counts changelog lines read by recent comment scans
	LinesExamined prometheus.Counter

	// Skipped counts entries excluded from results by reason
	Skipped *prometheus.CounterVec

	// ScanTruncated counts scans stopped by the line ceiling
	ScanTruncated prometheus.Counter
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		QueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "discussion_query_duration_seconds",
			Help:    "Discussion query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"query"}),
		QueryResults: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "discussion_query_results",
			Help:    "Number of entries returned per discussion query",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 500},
		}, []string{"query"}),
		LinesExamined: factory.NewCounter(prometheus.CounterOpts{
			Name: "discussion_changelog_lines_examined_total",
			Help: "Total changelog lines examined by recent comment scans",
		}),
		Skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "discussion_skipped_total",
			Help: "Entries excluded from discussion results by reason",
		}, []string{"query", "reason"}),
		ScanTruncated: factory.NewCounter(prometheus.CounterOpts{
			Name: "discussion_scan_truncated_total",
			Help: "Recent comment scans stopped by the line ceiling",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
