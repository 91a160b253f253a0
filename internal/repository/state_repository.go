package repository

import (
	"context"

	"campaign-radar/internal/domain/entity"
)

// StateSnapshot is the persisted lifecycle state plus a version counter for
// optimistic concurrency. The version the snapshot was loaded with must be
// presented back on save; a mismatch means another process wrote in between.
type StateSnapshot struct {
	Version int64
	Entries map[string]*entity.StateEntry
}

// StateRepository persists the mapping from external_id to lifecycle
// metadata. The orchestrator loads the full state once at run start and
// saves it once at run end; entries are never deleted.
type StateRepository interface {
	// Load reads the full persisted state. A missing backing store is not
	// an error: it returns an empty snapshot at version zero.
	Load(ctx context.Context) (*StateSnapshot, error)

	// Save writes the full state atomically. expectedVersion is the version
	// Load returned; Save fails with ErrStateConflict when the store has
	// moved past it, so a concurrent run cannot silently lose updates.
	Save(ctx context.Context, snapshot *StateSnapshot, expectedVersion int64) error
}
