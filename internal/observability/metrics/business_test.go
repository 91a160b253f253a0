package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSourceCrawlError(t *testing.T) {
	before := testutil.ToFloat64(SourceCrawlErrors.WithLabelValues("src-a", "fetch_failed"))
	RecordSourceCrawlError("src-a", "fetch_failed")
	after := testutil.ToFloat64(SourceCrawlErrors.WithLabelValues("src-a", "fetch_failed"))
	assert.Equal(t, before+1, after)
}

func TestRecordCandidateDropped(t *testing.T) {
	before := testutil.ToFloat64(CandidatesDropped.WithLabelValues("src-b", "keyword_filter"))
	RecordCandidateDropped("src-b", "keyword_filter")
	after := testutil.ToFloat64(CandidatesDropped.WithLabelValues("src-b", "keyword_filter"))
	assert.Equal(t, before+1, after)
}

func TestRecordRun(t *testing.T) {
	RecordRun(3*time.Second, 42, 5, 30, 7)

	assert.Equal(t, 42.0, testutil.ToFloat64(RecordsEmitted))
	assert.Equal(t, 5.0, testutil.ToFloat64(ReconcilePartition.WithLabelValues("new_this_period")))
	assert.Equal(t, 30.0, testutil.ToFloat64(ReconcilePartition.WithLabelValues("continuing")))
	assert.Equal(t, 7.0, testutil.ToFloat64(ReconcilePartition.WithLabelValues("newly_expired")))
}

func TestRecordSync(t *testing.T) {
	before := testutil.ToFloat64(SyncResults.WithLabelValues("upsert", "failure"))
	RecordSync("upsert", false)
	after := testutil.ToFloat64(SyncResults.WithLabelValues("upsert", "failure"))
	assert.Equal(t, before+1, after)
}
