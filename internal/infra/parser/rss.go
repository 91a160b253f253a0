package parser

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"

	"campaign-radar/internal/domain/entity"
	"campaign-radar/internal/utils/text"
)

// RSSParser extracts candidates from RSS/Atom feeds using gofeed.
// Feeds need no extraction rules: every entry is one candidate.
type RSSParser struct {
	fp *gofeed.Parser
}

// NewRSSParser creates a new RSSParser.
func NewRSSParser() *RSSParser {
	return &RSSParser{fp: gofeed.NewParser()}
}

// Parse maps each feed entry to a candidate: entry title, link, published
// date text, and summary as reward text. Entries without a link are dropped
// silently. Content that does not decode as a feed at all fails with
// entity.ErrFormat.
func (p *RSSParser) Parse(raw []byte, src *entity.SourceConfig) ([]RawCandidate, error) {
	feed, err := p.fp.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed for source %s: %v", entity.ErrFormat, src.ID, err)
	}

	candidates := make([]RawCandidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		link := item.Link
		if link == "" {
			continue
		}

		title := text.Normalize(item.Title)
		if title == "" {
			continue
		}

		dateText := item.Published
		if dateText == "" && item.PublishedParsed != nil {
			dateText = item.PublishedParsed.Format(entity.DateLayout)
		}

		rewardText := text.Normalize(item.Description)
		if rewardText == "" {
			rewardText = title
		}

		candidates = append(candidates, RawCandidate{
			Title:      title,
			Link:       link,
			DateText:   text.Normalize(dateText),
			RewardText: rewardText,
		})
	}

	return candidates, nil
}
