package crawl

import (
	"strings"

	"campaign-radar/internal/domain/entity"
	"campaign-radar/internal/observability/metrics"
)

// RunFilters are the record-level filters selected by run mode. They
// are mutually compatible and applied as an intersection of predicates.
type RunFilters struct {
	// ValidWithinDays keeps only records whose deadline falls within N
	// days of the run date, boundary inclusive. Nil disables the window.
	ValidWithinDays *int

	// RequireDeadline drops records without a parsable deadline.
	RequireDeadline bool

	// ActiveOnly keeps only records whose deadline has not passed.
	// It implies RequireDeadline: a record with no deadline cannot be
	// shown to be active.
	ActiveOnly bool
}

// Apply filters records against the run date. Records failing any
// enabled predicate are dropped; drops are counted per source in the
// dropped-records metric and returned so the run summary can surface
// them.
func (f RunFilters) Apply(records []entity.CampaignRecord, today entity.Date) ([]entity.CampaignRecord, int) {
	if f.ValidWithinDays == nil && !f.RequireDeadline && !f.ActiveOnly {
		return records, 0
	}

	dropped := 0
	out := make([]entity.CampaignRecord, 0, len(records))
	for _, rec := range records {
		keep, reason := f.keep(rec, today)
		if !keep {
			dropped++
			metrics.RecordCandidateDropped(sourceIDOf(rec), reason)
			continue
		}
		out = append(out, rec)
	}
	return out, dropped
}

func (f RunFilters) keep(rec entity.CampaignRecord, today entity.Date) (bool, string) {
	if !rec.HasDeadline() {
		if f.RequireDeadline || f.ActiveOnly || f.ValidWithinDays != nil {
			return false, "no_deadline"
		}
		return true, ""
	}

	d := *rec.Deadline

	if f.ActiveOnly && d.Before(today) {
		return false, "expired"
	}

	if f.ValidWithinDays != nil {
		windowEnd := today.AddDays(*f.ValidWithinDays)
		if d.Before(today) {
			return false, "expired"
		}
		if windowEnd.Before(d) {
			return false, "outside_window"
		}
	}

	return true, ""
}

// sourceIDOf recovers the source id from a record's external_id, which
// is always "<source_id>:<hash>".
func sourceIDOf(rec entity.CampaignRecord) string {
	id, _, _ := strings.Cut(rec.ExternalID, ":")
	return id
}
