// Package parser provides format-specific extraction of campaign candidates
// from raw source content. One parser variant exists per source format
// (html, rss, json); the variant is selected by the source's declared format.
package parser

import (
	"fmt"

	"campaign-radar/internal/domain/entity"
)

// RawCandidate is an unfiltered, unnormalized item extracted from raw
// content. Fields are plain text as found in the source; normalization and
// date parsing happen downstream.
type RawCandidate struct {
	Title      string
	Link       string
	DateText   string
	RewardText string

	// NearText is the surrounding text of the candidate node (HTML only).
	// The keyword filter consults it when the title alone does not match.
	NearText string
}

// ContentParser extracts raw candidates from fetched content.
//
// Parse never fails for malformed-but-parseable input; it returns an empty
// slice instead. It fails (wrapping entity.ErrFormat) only when the raw
// content cannot be decoded as the source's declared format at all.
type ContentParser interface {
	Parse(raw []byte, src *entity.SourceConfig) ([]RawCandidate, error)
}

// ForFormat returns the parser variant for the given source format.
// An unrecognized format is a configuration error; config validation
// rejects it before any fetch, so this is a defensive second check.
func ForFormat(format entity.SourceFormat) (ContentParser, error) {
	switch format {
	case entity.FormatHTML:
		return NewHTMLParser(), nil
	case entity.FormatRSS:
		return NewRSSParser(), nil
	case entity.FormatJSON:
		return NewJSONParser(), nil
	}
	return nil, fmt.Errorf("%w: no parser for format %q", entity.ErrConfig, format)
}
