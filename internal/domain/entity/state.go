package entity

import "fmt"

// Status is the lifecycle status of a tracked campaign.
type Status string

const (
	// StatusActive marks a campaign that is currently observed or whose
	// deadline has not yet passed.
	StatusActive Status = "active"

	// StatusNeedsReview marks a campaign whose lifecycle could not be
	// determined automatically (e.g. no parsable deadline at archival time).
	StatusNeedsReview Status = "needs_review"

	// StatusExpiredArchived marks a campaign whose deadline has passed and
	// which is no longer observed. The transition is one-way.
	StatusExpiredArchived Status = "expired_archived"
)

// Valid reports whether the status is a known lifecycle value.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusNeedsReview, StatusExpiredArchived:
		return true
	}
	return false
}

// StateEntry is the persisted lifecycle metadata for one campaign identity.
// Entries are never deleted; the state file is an append/update log.
type StateEntry struct {
	ExternalID string `json:"-"`
	FirstSeen  Date   `json:"first_seen"`
	LastSeen   Date   `json:"last_seen"`
	Status     Status `json:"status"`

	// Deadline is carried so expiry can be decided for entries absent
	// from the current run's record set.
	Deadline *Date `json:"deadline,omitempty"`
}

// Validate checks the entry's internal consistency.
func (e *StateEntry) Validate() error {
	if e.ExternalID == "" {
		return &ValidationError{Field: "external_id", Message: "must not be empty"}
	}
	if !e.Status.Valid() {
		return &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("unknown status %q", e.Status),
		}
	}
	if e.LastSeen.Before(e.FirstSeen) {
		return &ValidationError{Field: "last_seen", Message: "must not precede first_seen"}
	}
	return nil
}

// RunResult partitions one run's deduplicated record set after
// reconciliation against persisted state.
type RunResult struct {
	// Records is the full deduplicated record set for the run.
	Records []CampaignRecord

	// NewThisPeriod are records whose identity was first seen within the
	// configured lookback window ending at the run date.
	NewThisPeriod []CampaignRecord

	// NewlyExpired are previously active records that transitioned to
	// expired_archived in this run.
	NewlyExpired []CampaignRecord
}
