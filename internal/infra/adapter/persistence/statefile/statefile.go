// Package statefile provides a flat-file JSON implementation of the
// state repository. It is the default backend: one crawler process
// reads the file at run start and writes it back at run end.
package statefile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"campaign-radar/internal/domain/entity"
	"campaign-radar/internal/repository"
)

// fileSchema is the on-disk layout of the state file.
type fileSchema struct {
	Version   int64                         `json:"version"`
	UpdatedAt time.Time                     `json:"updated_at"`
	Items     map[string]*entity.StateEntry `json:"items"`
}

// Repo implements repository.StateRepository on a JSON file.
type Repo struct {
	path string
	now  func() time.Time
}

// NewRepo creates a state file repository at the given path. Parent
// directories are created on first save.
func NewRepo(path string) *Repo {
	return &Repo{path: path, now: time.Now}
}

// Load reads the state file. A missing file yields an empty snapshot at
// version zero.
func (r *Repo) Load(ctx context.Context) (*repository.StateSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &repository.StateSnapshot{Entries: map[string]*entity.StateEntry{}}, nil
		}
		return nil, fmt.Errorf("Load: read %s: %w", r.path, err)
	}

	var schema fileSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("Load: parse %s: %w", r.path, err)
	}

	entries := schema.Items
	if entries == nil {
		entries = map[string]*entity.StateEntry{}
	}
	for id, entry := range entries {
		entry.ExternalID = id
	}

	return &repository.StateSnapshot{Version: schema.Version, Entries: entries}, nil
}

// Save writes the full state atomically via a temp file and rename.
// The on-disk version is re-checked right before the write so a
// concurrent run cannot silently overwrite newer state.
func (r *Repo) Save(ctx context.Context, snapshot *repository.StateSnapshot, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.checkVersion(expectedVersion); err != nil {
		return err
	}

	schema := fileSchema{
		Version:   expectedVersion + 1,
		UpdatedAt: r.now().UTC().Truncate(time.Second),
		Items:     snapshot.Entries,
	}

	data, err := json.MarshalIndent(&schema, "", "  ")
	if err != nil {
		return fmt.Errorf("Save: marshal state: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("Save: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("Save: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("Save: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("Save: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("Save: rename into place: %w", err)
	}

	snapshot.Version = schema.Version
	return nil
}

// checkVersion compares the on-disk version against what the caller
// loaded. A missing file counts as version zero.
func (r *Repo) checkVersion(expectedVersion int64) error {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if expectedVersion != 0 {
				return fmt.Errorf("%w: state file removed since load (expected version %d)",
					repository.ErrStateConflict, expectedVersion)
			}
			return nil
		}
		return fmt.Errorf("Save: read current state: %w", err)
	}

	var schema fileSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return fmt.Errorf("Save: parse current state: %w", err)
	}

	if schema.Version != expectedVersion {
		return fmt.Errorf("%w: state file at version %d, expected %d",
			repository.ErrStateConflict, schema.Version, expectedVersion)
	}
	return nil
}
