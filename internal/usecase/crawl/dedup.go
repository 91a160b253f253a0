package crawl

import "campaign-radar/internal/domain/entity"

// Dedup collapses records sharing an external_id. The last record in
// extraction order wins: sources are replayed in configuration order,
// so a later-configured source deliberately overrides an earlier one's
// view of the same campaign. Output order is the first-appearance order
// of each identity, which keeps run outputs stable across runs.
func Dedup(records []entity.CampaignRecord) []entity.CampaignRecord {
	index := make(map[string]int, len(records))
	out := make([]entity.CampaignRecord, 0, len(records))

	for _, rec := range records {
		if pos, seen := index[rec.ExternalID]; seen {
			out[pos] = rec
			continue
		}
		index[rec.ExternalID] = len(out)
		out = append(out, rec)
	}

	return out
}
