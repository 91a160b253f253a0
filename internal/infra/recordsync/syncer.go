// Package recordsync pushes emitted campaign records to an external
// record store over its REST API. Sync failures are per-record: one
// failed upsert is logged and counted but never aborts the run.
package recordsync

import (
	"context"

	"campaign-radar/internal/domain/entity"
)

// RecordSyncer mirrors emitted records into an external record store.
type RecordSyncer interface {
	// Upsert creates or updates the store's record for the campaign,
	// matched by external_id.
	Upsert(ctx context.Context, record entity.CampaignRecord) error

	// Archive marks the store's record for the given external_id as
	// expired. A record unknown to the store is not an error.
	Archive(ctx context.Context, externalID string) error
}

// NoOpSyncer is used when record sync is disabled. Null Object pattern,
// so callers need no nil checks.
type NoOpSyncer struct{}

// NewNoOpSyncer creates a NoOpSyncer.
func NewNoOpSyncer() *NoOpSyncer {
	return &NoOpSyncer{}
}

// Upsert does nothing and returns nil.
func (n *NoOpSyncer) Upsert(ctx context.Context, record entity.CampaignRecord) error {
	return nil
}

// Archive does nothing and returns nil.
func (n *NoOpSyncer) Archive(ctx context.Context, externalID string) error {
	return nil
}
