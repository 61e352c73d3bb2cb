// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Extraction metrics
	SwapLogsFetched     prometheus.Counter
	PurchasesExtracted  prometheus.Counter
	RecordsSkipped      *prometheus.CounterVec
	PriceResolutions    *prometheus.CounterVec

	// PnL metrics
	BuyersEvaluated  prometheus.Counter
	FlipsQualified   prometheus.Counter

	// Load metrics
	RowsLoaded *prometheus.CounterVec

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "phoenix_flipper"
	}

	return &Metrics{
		SwapLogsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "swap_logs_fetched_total",
			Help:      "Total number of swap logs fetched from the warehouse",
		}),
		PurchasesExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "purchases_extracted_total",
			Help:      "Total number of qualifying purchases extracted",
		}),
		RecordsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "records_skipped_total",
			Help:      "Total number of swap logs skipped by reason",
		}, []string{"reason"}),
		PriceResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "resolutions_total",
			Help:      "Total number of price resolutions by source",
		}, []string{"source"}),

		BuyersEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pnl",
			Name:      "buyers_evaluated_total",
			Help:      "Total number of buyer rows evaluated for recovery profit",
		}),
		FlipsQualified: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pnl",
			Name:      "flips_qualified_total",
			Help:      "Total number of flips at or above the profit threshold",
		}),

		RowsLoaded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "rows_loaded_total",
			Help:      "Total number of rows loaded by output table",
		}, []string{"table"}),

		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"pipeline", "status"}),
		PipelineDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"pipeline"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordPipelineRun records a pipeline run.
func RecordPipelineRun(pipeline, status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(pipeline, status).Inc()
	DefaultMetrics.PipelineDuration.WithLabelValues(pipeline).Observe(durationSeconds)
}

// RecordRowsLoaded records rows loaded into an output table.
func RecordRowsLoaded(table string, n int) {
	DefaultMetrics.RowsLoaded.WithLabelValues(table).Add(float64(n))
}
