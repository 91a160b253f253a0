// Package reconcile implements the diff between one run's deduplicated
// record set and the persisted lifecycle state. The diff is a pure
// function of (run date, current records, previous state): re-running
// with identical inputs produces an identical result.
package reconcile

import (
	"sort"

	"campaign-radar/internal/domain/entity"
)

// Policy controls reconciliation behavior.
type Policy struct {
	// LookbackDays is the window for the new_this_period partition:
	// a record is "new this period" when its first_seen is at most this
	// many days before the run date, boundary inclusive.
	// Default: 7
	LookbackDays int

	// ReactivateArchived controls what happens when an archived campaign
	// identity re-appears with a future or absent deadline. Off by
	// default: archival stays one-way.
	ReactivateArchived bool
}

// DefaultPolicy returns the standard weekly-window policy.
func DefaultPolicy() Policy {
	return Policy{LookbackDays: 7}
}

// Engine reconciles observed records against persisted state.
type Engine struct {
	policy Policy
}

// NewEngine creates an Engine. A non-positive LookbackDays falls back
// to the default window.
func NewEngine(policy Policy) *Engine {
	if policy.LookbackDays <= 0 {
		policy.LookbackDays = DefaultPolicy().LookbackDays
	}
	return &Engine{policy: policy}
}

// Reconcile computes the updated state and the run partitions.
//
// For every observed record: a previously unknown identity gets a fresh
// entry (first_seen = last_seen = runDate, active); a known identity
// has last_seen advanced and its status reset to active, except that an
// archived entry stays archived unless ReactivateArchived is set and
// the deadline is absent or in the future. An observed record whose
// deadline is strictly before runDate transitions to expired_archived,
// exactly once.
//
// For every entry absent from the current run: an active entry whose
// stored deadline is strictly before runDate is archived; an active
// entry with no stored deadline that fell out of the lookback window is
// flagged needs_review; otherwise the entry is left untouched, so a
// transient fetch gap never causes premature archival.
//
// previous is not mutated. The returned RunResult partitions share the
// record values passed in current; newly expired identities absent from
// the run are represented by a stub record carrying only external_id
// and deadline.
func (e *Engine) Reconcile(runDate entity.Date, current []entity.CampaignRecord, previous map[string]*entity.StateEntry) (map[string]*entity.StateEntry, *entity.RunResult) {
	updated := make(map[string]*entity.StateEntry, len(previous)+len(current))
	for id, prev := range previous {
		cp := *prev
		cp.ExternalID = id
		if prev.Deadline != nil {
			d := *prev.Deadline
			cp.Deadline = &d
		}
		updated[id] = &cp
	}

	result := &entity.RunResult{Records: current}
	windowStart := runDate.AddDays(-e.policy.LookbackDays)
	observed := make(map[string]struct{}, len(current))

	for _, rec := range current {
		observed[rec.ExternalID] = struct{}{}

		entry, known := updated[rec.ExternalID]
		if !known {
			entry = &entity.StateEntry{
				ExternalID: rec.ExternalID,
				FirstSeen:  runDate,
				LastSeen:   runDate,
				Status:     entity.StatusActive,
			}
			updated[rec.ExternalID] = entry
		} else {
			entry.LastSeen = runDate
			switch entry.Status {
			case entity.StatusExpiredArchived:
				if e.policy.ReactivateArchived && !rec.ExpiredAt(runDate) {
					entry.Status = entity.StatusActive
				}
			default:
				entry.Status = entity.StatusActive
			}
		}

		// An entry that stays archived keeps its stored deadline; a
		// re-appearing archived campaign must not mutate archived state.
		if entry.Status != entity.StatusExpiredArchived {
			entry.Deadline = copyDeadline(rec.Deadline)
		}

		if entry.Status != entity.StatusExpiredArchived && rec.ExpiredAt(runDate) {
			entry.Status = entity.StatusExpiredArchived
			result.NewlyExpired = append(result.NewlyExpired, rec)
		}

		// Boundary inclusive: first_seen exactly LookbackDays old counts.
		if !entry.FirstSeen.Before(windowStart) {
			result.NewThisPeriod = append(result.NewThisPeriod, rec)
		}
	}

	// Absent entries are visited in sorted id order so the expired
	// partition is deterministic.
	absent := make([]string, 0, len(updated))
	for id := range updated {
		if _, ok := observed[id]; !ok {
			absent = append(absent, id)
		}
	}
	sort.Strings(absent)

	for _, id := range absent {
		entry := updated[id]
		if entry.Status != entity.StatusActive {
			continue
		}
		switch {
		case entry.Deadline != nil && entry.Deadline.Before(runDate):
			entry.Status = entity.StatusExpiredArchived
			result.NewlyExpired = append(result.NewlyExpired, entity.CampaignRecord{
				ExternalID: id,
				Deadline:   copyDeadline(entry.Deadline),
			})
		case entry.Deadline == nil && entry.LastSeen.Before(windowStart):
			// Vanished without a known deadline: flag for human review
			// rather than guessing at expiry.
			entry.Status = entity.StatusNeedsReview
		}
	}

	return updated, result
}

func copyDeadline(d *entity.Date) *entity.Date {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}
