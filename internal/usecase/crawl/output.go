package crawl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"campaign-radar/internal/domain/entity"
)

// WriteRecords writes the full record set as pretty-printed JSON,
// creating parent directories as needed.
func WriteRecords(path string, records []entity.CampaignRecord) error {
	if records == nil {
		records = []entity.CampaignRecord{}
	}
	return writeJSON(path, records)
}

// WritePartitions writes the periodic-mode side outputs next to the
// main output file: new_this_period.json and expired_to_archive.json.
// Both use the campaign record shape. Empty partitions produce no file
// so downstream jobs can watch for their presence.
func WritePartitions(outPath string, result *entity.RunResult) error {
	dir := filepath.Dir(outPath)

	if len(result.NewThisPeriod) > 0 {
		if err := writeJSON(filepath.Join(dir, "new_this_period.json"), result.NewThisPeriod); err != nil {
			return err
		}
	}

	if len(result.NewlyExpired) > 0 {
		if err := writeJSON(filepath.Join(dir, "expired_to_archive.json"), result.NewlyExpired); err != nil {
			return err
		}
	}

	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
