// Package metrics provides centralized Prometheus metrics for the crawler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Crawl metrics track per-source extraction behavior.
var (
	// SourceCrawlDuration measures how long one source's fetch+parse took.
	SourceCrawlDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campaign_source_crawl_duration_seconds",
			Help:    "Duration of one source fetch and parse in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source_id"},
	)

	// SourceCrawlErrors counts per-source crawl failures by error type.
	SourceCrawlErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_source_crawl_errors_total",
			Help: "Total number of source crawl errors",
		},
		[]string{"source_id", "error_type"},
	)

	// CandidatesExtracted counts raw candidates produced by the parsers.
	CandidatesExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_candidates_extracted_total",
			Help: "Total number of raw candidates extracted from sources",
		},
		[]string{"source_id"},
	)

	// CandidatesDropped counts candidates and records removed from the
	// run output, by reason.
	CandidatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_candidates_dropped_total",
			Help: "Total number of candidates dropped before deduplication",
		},
		[]string{"source_id", "reason"},
	)
)

// Run metrics track whole-run outcomes.
var (
	// RecordsEmitted gauges the deduplicated record count of the last run.
	RecordsEmitted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campaign_records_emitted",
			Help: "Number of deduplicated campaign records emitted by the last run",
		},
	)

	// ReconcilePartition gauges the size of each reconcile partition
	// (new_this_period, continuing, newly_expired) after the last run.
	ReconcilePartition = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "campaign_reconcile_partition_size",
			Help: "Size of each lifecycle partition after the last reconcile",
		},
		[]string{"partition"},
	)

	// RunDuration measures total run duration.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campaign_run_duration_seconds",
			Help:    "Total crawl run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)

// Sync metrics track record store synchronization.
var (
	// SyncResults counts record sync attempts by outcome.
	SyncResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_sync_results_total",
			Help: "Total number of record sync operations by outcome",
		},
		[]string{"operation", "status"},
	)
)
