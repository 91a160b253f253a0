// Package sqlite provides a SQLite implementation of the state
// repository, for deployments where several tools share the crawler's
// lifecycle state and a flat JSON file becomes awkward.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campaign-radar/internal/domain/entity"
	"campaign-radar/internal/repository"
)

// StateRepo implements repository.StateRepository using SQLite.
type StateRepo struct{ db *sql.DB }

// NewStateRepo creates a SQLite-backed state repository.
func NewStateRepo(db *sql.DB) *StateRepo {
	return &StateRepo{db: db}
}

// Migrate creates the state tables when they do not exist yet.
func (repo *StateRepo) Migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS state_meta (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	version INTEGER NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS state_entries (
	external_id TEXT PRIMARY KEY,
	first_seen TEXT NOT NULL,
	last_seen TEXT NOT NULL,
	status TEXT NOT NULL,
	deadline TEXT
);
`
	if _, err := repo.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("Migrate: ExecContext: %w", err)
	}
	return nil
}

// Load reads the full persisted state. An empty database yields an
// empty snapshot at version zero.
func (repo *StateRepo) Load(ctx context.Context) (*repository.StateSnapshot, error) {
	var version int64
	err := repo.db.QueryRowContext(ctx, `SELECT version FROM state_meta WHERE id = 1`).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Load: version scan: %w", err)
	}

	const query = `
SELECT external_id, first_seen, last_seen, status, deadline
FROM state_entries
`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("Load: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make(map[string]*entity.StateEntry, 100)
	for rows.Next() {
		var (
			entry               entity.StateEntry
			firstSeen, lastSeen string
			deadline            sql.NullString
		)
		if err := rows.Scan(&entry.ExternalID, &firstSeen, &lastSeen, &entry.Status, &deadline); err != nil {
			return nil, fmt.Errorf("Load: Scan: %w", err)
		}

		if entry.FirstSeen, err = entity.ParseDate(firstSeen); err != nil {
			return nil, fmt.Errorf("Load: first_seen: %w", err)
		}
		if entry.LastSeen, err = entity.ParseDate(lastSeen); err != nil {
			return nil, fmt.Errorf("Load: last_seen: %w", err)
		}
		if deadline.Valid {
			d, err := entity.ParseDate(deadline.String)
			if err != nil {
				return nil, fmt.Errorf("Load: deadline: %w", err)
			}
			entry.Deadline = &d
		}

		entries[entry.ExternalID] = &entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Load: rows.Err: %w", err)
	}

	return &repository.StateSnapshot{Version: version, Entries: entries}, nil
}

// Save replaces the full state in one transaction, bumping the version.
// The version check and the write happen inside the same transaction,
// so a concurrent run fails with ErrStateConflict instead of silently
// overwriting newer state.
func (repo *StateRepo) Save(ctx context.Context, snapshot *repository.StateSnapshot, expectedVersion int64) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Save: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current int64
	err = tx.QueryRowContext(ctx, `SELECT version FROM state_meta WHERE id = 1`).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("Save: version scan: %w", err)
	}
	if current != expectedVersion {
		return fmt.Errorf("%w: state at version %d, expected %d",
			repository.ErrStateConflict, current, expectedVersion)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM state_entries`); err != nil {
		return fmt.Errorf("Save: clear entries: %w", err)
	}

	const insert = `
INSERT INTO state_entries (external_id, first_seen, last_seen, status, deadline)
VALUES (?, ?, ?, ?, ?)
`
	for id, entry := range snapshot.Entries {
		var deadline any
		if entry.Deadline != nil {
			deadline = entry.Deadline.String()
		}
		if _, err := tx.ExecContext(ctx, insert,
			id, entry.FirstSeen.String(), entry.LastSeen.String(), string(entry.Status), deadline); err != nil {
			return fmt.Errorf("Save: insert %s: %w", id, err)
		}
	}

	const upsertMeta = `
INSERT INTO state_meta (id, version, updated_at) VALUES (1, ?, ?)
ON CONFLICT (id) DO UPDATE SET version = excluded.version, updated_at = excluded.updated_at
`
	newVersion := expectedVersion + 1
	if _, err := tx.ExecContext(ctx, upsertMeta, newVersion, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("Save: update meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Save: Commit: %w", err)
	}

	snapshot.Version = newVersion
	return nil
}
