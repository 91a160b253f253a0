package sourcecfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-radar/internal/domain/entity"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "sources.json", `[
		{
			"id": "bank-a",
			"provider": "Bank A",
			"category": "bank",
			"format": "html",
			"endpoint": "https://bank-a.example.com/campaigns",
			"selectors": {"list": "div.campaign-card", "title": "h3", "link": "a"},
			"include_keywords": ["口座開設"]
		},
		{
			"id": "point-b",
			"provider": "Point B",
			"category": "point",
			"format": "rss",
			"endpoint": "https://point-b.example.com/feed.xml",
			"disabled": true
		}
	]`)

	sources, err := Load(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "bank-a", sources[0].ID)
	assert.Equal(t, entity.FormatHTML, sources[0].Format)
	assert.Equal(t, []string{"口座開設"}, sources[0].IncludeKeywords)
	// 未指定のexcludeはデフォルトが補われる
	assert.Equal(t, DefaultExcludeKeywords, sources[0].ExcludeKeywords)

	assert.True(t, sources[1].Disabled)
	assert.Equal(t, DefaultIncludeKeywords, sources[1].IncludeKeywords)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "sources.yaml", `
- id: card-c
  provider: Card C
  category: card
  format: json
  endpoint: https://api.card-c.example.com/v1/campaigns
  selectors:
    list_path: data.campaigns
    title_key: name
    link_key: detail_url
`)

	sources, err := Load(path)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, entity.FormatJSON, sources[0].Format)
	assert.Equal(t, "data.campaigns", sources[0].Selectors.ListPath)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "not a list",
			file:    "sources.json",
			content: `{"id": "x"}`,
		},
		{
			name: "duplicate id",
			file: "sources.json",
			content: `[
				{"id": "a", "provider": "A", "format": "html", "endpoint": "https://a.example.com/"},
				{"id": "a", "provider": "A2", "format": "rss", "endpoint": "https://a2.example.com/"}
			]`,
		},
		{
			name:    "unknown format",
			file:    "sources.json",
			content: `[{"id": "a", "provider": "A", "format": "csv", "endpoint": "https://a.example.com/"}]`,
		},
		{
			name:    "missing endpoint",
			file:    "sources.json",
			content: `[{"id": "a", "provider": "A", "format": "html"}]`,
		},
		{
			name:    "invalid yaml",
			file:    "sources.yaml",
			content: "- id: [broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, entity.ErrConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestEnabled(t *testing.T) {
	sources := []*entity.SourceConfig{
		{ID: "a"},
		{ID: "b", Disabled: true},
		{ID: "c"},
	}

	enabled := Enabled(sources)
	require.Len(t, enabled, 2)
	assert.Equal(t, "a", enabled[0].ID)
	assert.Equal(t, "c", enabled[1].ID)
}
