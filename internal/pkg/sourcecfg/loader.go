// Package sourcecfg loads and validates source configuration files.
// A configuration file is a list of source definitions, serialized as a
// JSON array or a YAML sequence selected by file extension.
package sourcecfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"campaign-radar/internal/domain/entity"
)

// Default keyword sets applied to sources that configure none.
// These match the promotional vocabulary of Japanese campaign listings.
var (
	DefaultIncludeKeywords = []string{
		"新規",
		"口座開設",
		"キャンペーン",
		"ポイント",
		"キャッシュバック",
		"還元",
		"入会",
		"登録",
		"特典",
		"プレゼント",
		"クーポン",
	}
	DefaultExcludeKeywords = []string{"終了", "終了しました", "抽選のみ"}
)

// Load reads a source configuration file, applies keyword defaults, and
// validates every entry. Files ending in .yaml or .yml are parsed as
// YAML, everything else as JSON. Disabled sources are kept in the list;
// the crawl service skips them.
//
// Load fails (wrapping entity.ErrConfig) when the file is not a list,
// when any source fails validation, or when two sources share an id.
func Load(path string) ([]*entity.SourceConfig, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's CLI flag
	if err != nil {
		return nil, fmt.Errorf("read source config %s: %w", path, err)
	}

	var sources []*entity.SourceConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &sources); err != nil {
			return nil, fmt.Errorf("%w: parse YAML source config %s: %v", entity.ErrConfig, path, err)
		}
	default:
		if err := json.Unmarshal(raw, &sources); err != nil {
			return nil, fmt.Errorf("%w: parse JSON source config %s: %v", entity.ErrConfig, path, err)
		}
	}

	seen := make(map[string]struct{}, len(sources))
	for i, src := range sources {
		if src == nil {
			return nil, fmt.Errorf("%w: source at index %d is empty", entity.ErrConfig, i)
		}

		ApplyDefaults(src)

		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("source at index %d: %w", i, err)
		}
		if _, dup := seen[src.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate source id %q", entity.ErrConfig, src.ID)
		}
		seen[src.ID] = struct{}{}
	}

	return sources, nil
}

// ApplyDefaults fills in the default keyword sets when a source
// configures none.
func ApplyDefaults(src *entity.SourceConfig) {
	if len(src.IncludeKeywords) == 0 {
		src.IncludeKeywords = DefaultIncludeKeywords
	}
	if len(src.ExcludeKeywords) == 0 {
		src.ExcludeKeywords = DefaultExcludeKeywords
	}
}

// Enabled returns the subset of sources that are not disabled,
// preserving configuration order.
func Enabled(sources []*entity.SourceConfig) []*entity.SourceConfig {
	out := make([]*entity.SourceConfig, 0, len(sources))
	for _, src := range sources {
		if !src.Disabled {
			out = append(out, src)
		}
	}
	return out
}
