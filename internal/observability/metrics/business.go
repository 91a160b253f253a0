package metrics

import "time"

// RecordSourceCrawl records metrics for one source's fetch+parse.
func RecordSourceCrawl(sourceID string, duration time.Duration, candidates int) {
	SourceCrawlDuration.WithLabelValues(sourceID).Observe(duration.Seconds())
	if candidates > 0 {
		CandidatesExtracted.WithLabelValues(sourceID).Add(float64(candidates))
	}
}

// RecordSourceCrawlError records an error during source crawling.
// errorType should be one of "fetch_failed", "format_error", "timeout".
func RecordSourceCrawlError(sourceID, errorType string) {
	SourceCrawlErrors.WithLabelValues(sourceID, errorType).Inc()
}

// RecordCandidateDropped records a candidate or record removed from the
// run output. reason should be one of "keyword_filter",
// "missing_identity", "no_deadline", "expired", "outside_window".
func RecordCandidateDropped(sourceID, reason string) {
	CandidatesDropped.WithLabelValues(sourceID, reason).Inc()
}

// RecordRun records the outcome of a full crawl run.
func RecordRun(duration time.Duration, records, newThisPeriod, continuing, newlyExpired int) {
	RunDuration.Observe(duration.Seconds())
	RecordsEmitted.Set(float64(records))
	ReconcilePartition.WithLabelValues("new_this_period").Set(float64(newThisPeriod))
	ReconcilePartition.WithLabelValues("continuing").Set(float64(continuing))
	ReconcilePartition.WithLabelValues("newly_expired").Set(float64(newlyExpired))
}

// RecordSync records the result of one record store operation.
// operation is "upsert" or "archive"; success selects the status label.
func RecordSync(operation string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	SyncResults.WithLabelValues(operation, status).Inc()
}
