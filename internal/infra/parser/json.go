package parser

import (
	"fmt"

	"github.com/tidwall/gjson"

	"campaign-radar/internal/domain/entity"
	"campaign-radar/internal/utils/text"
)

// Default field mapping for JSON sources that configure only a list path.
const (
	defaultListPath    = "items"
	defaultTitleKey    = "title"
	defaultLinkKey     = "url"
	defaultDeadlineKey = "deadline"
)

// JSONParser extracts candidates from JSON endpoints using gjson paths
// configured per source.
type JSONParser struct{}

// NewJSONParser creates a new JSONParser.
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// Parse locates the candidate array at the configured list path and maps
// each element's fields via the configured key names. A list path that
// resolves to anything but an array yields an empty slice; content that is
// not JSON at all fails with entity.ErrFormat.
func (p *JSONParser) Parse(raw []byte, src *entity.SourceConfig) ([]RawCandidate, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid JSON for source %s", entity.ErrFormat, src.ID)
	}

	listPath := src.Selectors.ListPath
	if listPath == "" {
		listPath = defaultListPath
	}
	titleKey := keyOrDefault(src.Selectors.TitleKey, defaultTitleKey)
	linkKey := keyOrDefault(src.Selectors.LinkKey, defaultLinkKey)
	deadlineKey := keyOrDefault(src.Selectors.DeadlineKey, defaultDeadlineKey)

	list := gjson.GetBytes(raw, listPath)
	if !list.IsArray() {
		return nil, nil
	}

	var candidates []RawCandidate
	list.ForEach(func(_, element gjson.Result) bool {
		if !element.IsObject() {
			return true
		}

		link := element.Get(linkKey).String()
		if link == "" {
			return true
		}

		title := text.Normalize(element.Get(titleKey).String())
		if title == "" {
			return true
		}

		rewardText := ""
		if src.Selectors.RewardKey != "" {
			rewardText = text.Normalize(element.Get(src.Selectors.RewardKey).String())
		}
		if rewardText == "" {
			rewardText = title
		}

		candidates = append(candidates, RawCandidate{
			Title:      title,
			Link:       link,
			DateText:   text.Normalize(element.Get(deadlineKey).String()),
			RewardText: rewardText,
		})
		return true
	})

	return candidates, nil
}

func keyOrDefault(key, def string) string {
	if key == "" {
		return def
	}
	return key
}
