package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics recorded by the use case layer.
// HTTP-level metrics live in the http middleware.
type Metrics struct {
	// Template metrics
	TemplateExecutions *prometheus.CounterVec
	TemplatePreviews   prometheus.Counter
	TemplateDuration   prometheus.Histogram

	// Schedule metrics
	EntriesPosted    prometheus.Counter
	EntriesSkipped   prometheus.Counter
	AutoPostRuns     prometheus.Counter
	AutoPostFailures prometheus.Counter
	PostingDuration  prometheus.Histogram

	// Report metrics
	ReportsGenerated *prometheus.CounterVec
	ReportDuration   *prometheus.HistogramVec
	ReportCacheHits  *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics. Call once per process;
// collectors register against the default registry.
func New() *Metrics {
	return &Metrics{
		// Template metrics
		TemplateExecutions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nusabooks_template_executions_total",
				Help: "Total number of template executions by status",
			},
			[]string{"status"},
		),
		TemplatePreviews: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nusabooks_template_previews_total",
			Help: "Total number of template previews",
		}),
		TemplateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nusabooks_template_execution_duration_seconds",
			Help:    "Duration of template executions",
			Buckets: prometheus.DefBuckets,
		}),

		// Schedule metrics
		EntriesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nusabooks_schedule_entries_posted_total",
			Help: "Total number of schedule entries posted",
		}),
		EntriesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nusabooks_schedule_entries_skipped_total",
			Help: "Total number of schedule entries skipped",
		}),
		AutoPostRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nusabooks_autopost_runs_total",
			Help: "Total number of auto-post batch runs",
		}),
		AutoPostFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nusabooks_autopost_entry_failures_total",
			Help: "Total number of entries that failed during auto-post runs",
		}),
		PostingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nusabooks_schedule_posting_duration_seconds",
			Help:    "Duration of schedule entry postings",
			Buckets: prometheus.DefBuckets,
		}),

		// Report metrics
		ReportsGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nusabooks_reports_generated_total",
				Help: "Total reports generated by type",
			},
			[]string{"report"},
		),
		ReportDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nusabooks_report_duration_seconds",
				Help:    "Report generation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report"},
		),
		ReportCacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nusabooks_report_cache_hits_total",
				Help: "Report cache hits and misses",
			},
			[]string{"result"},
		),
	}
}
