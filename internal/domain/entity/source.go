package entity

import (
	"fmt"
	"net/url"
)

// SourceFormat identifies the wire format a source publishes its listings in.
// The format selects the ContentParser variant used for extraction.
type SourceFormat string

const (
	FormatHTML SourceFormat = "html"
	FormatRSS  SourceFormat = "rss"
	FormatJSON SourceFormat = "json"
)

// Valid reports whether the format is one of the supported variants.
func (f SourceFormat) Valid() bool {
	switch f {
	case FormatHTML, FormatRSS, FormatJSON:
		return true
	}
	return false
}

// Selectors holds format-specific extraction rules for a source.
// HTML sources use CSS selectors; JSON sources use gjson field paths.
// RSS sources need no rules, the feed structure is fixed.
type Selectors struct {
	// HTML CSS selectors. List locates candidate nodes; the sub-selectors
	// are applied within each node. Title and Link fall back to the node
	// itself when empty.
	List   string `json:"list,omitempty" yaml:"list,omitempty"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	Link   string `json:"link,omitempty" yaml:"link,omitempty"`
	Date   string `json:"date,omitempty" yaml:"date,omitempty"`
	Reward string `json:"reward,omitempty" yaml:"reward,omitempty"`

	// JSON field paths and key names (gjson syntax for ListPath).
	ListPath    string `json:"list_path,omitempty" yaml:"list_path,omitempty"`
	TitleKey    string `json:"title_key,omitempty" yaml:"title_key,omitempty"`
	LinkKey     string `json:"link_key,omitempty" yaml:"link_key,omitempty"`
	DeadlineKey string `json:"deadline_key,omitempty" yaml:"deadline_key,omitempty"`
	RewardKey   string `json:"reward_key,omitempty" yaml:"reward_key,omitempty"`
}

// SourceConfig is the static description of one campaign source.
// Configs are loaded once per run and treated as immutable afterwards.
type SourceConfig struct {
	ID              string       `json:"id" yaml:"id"`
	Provider        string       `json:"provider" yaml:"provider"`
	Category        string       `json:"category" yaml:"category"`
	Format          SourceFormat `json:"format" yaml:"format"`
	Endpoint        string       `json:"endpoint" yaml:"endpoint"`
	Selectors       Selectors    `json:"selectors,omitempty" yaml:"selectors,omitempty"`
	IncludeKeywords []string     `json:"include_keywords,omitempty" yaml:"include_keywords,omitempty"`
	ExcludeKeywords []string     `json:"exclude_keywords,omitempty" yaml:"exclude_keywords,omitempty"`
	Disabled        bool         `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Validate checks the SourceConfig fields.
// An unrecognized format is a fatal configuration error per the error taxonomy.
func (s *SourceConfig) Validate() error {
	if s.ID == "" {
		return &ValidationError{Field: "id", Message: "must not be empty"}
	}
	if !s.Format.Valid() {
		return &ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unknown format %q (must be html, rss, or json)", s.Format),
		}
	}
	if s.Endpoint == "" {
		return &ValidationError{Field: "endpoint", Message: "must not be empty"}
	}
	u, err := url.Parse(s.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{
			Field:   "endpoint",
			Message: fmt.Sprintf("invalid URL %q (must be http or https)", s.Endpoint),
		}
	}
	return nil
}
