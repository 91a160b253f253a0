// Package crawl implements the crawl pipeline: fetch each configured
// source, extract raw candidates, filter by keywords, normalize into
// campaign records, deduplicate, and reconcile against persisted state.
package crawl

import (
	"strings"

	"campaign-radar/internal/domain/entity"
	"campaign-radar/internal/infra/parser"
	"campaign-radar/internal/utils/text"
)

// KeywordFilter decides whether a raw candidate looks like a campaign.
// Matching is case-sensitive substring match on normalized text, a
// deliberate simplification over locale-aware tokenization.
type KeywordFilter struct {
	include []string
	exclude []string
}

// NewKeywordFilter builds a filter from the source's keyword lists.
func NewKeywordFilter(src *entity.SourceConfig) *KeywordFilter {
	return &KeywordFilter{include: src.IncludeKeywords, exclude: src.ExcludeKeywords}
}

// Matches reports whether the candidate passes the keyword policy:
// at least one include keyword (or an empty include list) and no
// exclude keyword in the title plus reward text. When the primary text
// fails the include check, the surrounding text captured by the HTML
// parser is tried before giving up, since listing pages often put the
// campaign vocabulary next to a bare link.
func (f *KeywordFilter) Matches(c parser.RawCandidate) bool {
	primary := text.Normalize(strings.TrimSpace(c.Title + " " + c.RewardText))

	if f.matchesText(primary) {
		return true
	}
	if c.NearText == "" {
		return false
	}
	return f.matchesText(text.Normalize(c.NearText))
}

func (f *KeywordFilter) matchesText(t string) bool {
	if len(f.include) > 0 && !containsAny(t, f.include) {
		return false
	}
	return !containsAny(t, f.exclude)
}

func containsAny(t string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(t, k) {
			return true
		}
	}
	return false
}
