package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-radar/internal/domain/entity"
)

func htmlSource(selectors entity.Selectors) *entity.SourceConfig {
	return &entity.SourceConfig{
		ID:        "bank-a",
		Provider:  "Bank A",
		Format:    entity.FormatHTML,
		Endpoint:  "https://example.com/campaigns/",
		Selectors: selectors,
	}
}

func TestHTMLParser_Parse(t *testing.T) {
	p := NewHTMLParser()

	t.Run("extracts candidates with sub-selectors", func(t *testing.T) {
		html := `
<html><body>
  <div class="card">
    <h3 class="title">新規口座開設キャンペーン</h3>
    <a class="more" href="/campaign/1">詳細</a>
    <span class="until">2025年10月31日まで</span>
    <span class="reward">最大10,000ポイント</span>
  </div>
  <div class="card">
    <h3 class="title">終了しました</h3>
    <a class="more" href="/campaign/2">詳細</a>
  </div>
</body></html>`

		src := htmlSource(entity.Selectors{
			List:   "div.card",
			Title:  ".title",
			Link:   "a.more",
			Date:   ".until",
			Reward: ".reward",
		})

		candidates, err := p.Parse([]byte(html), src)
		require.NoError(t, err)
		require.Len(t, candidates, 2)

		assert.Equal(t, "新規口座開設キャンペーン", candidates[0].Title)
		assert.Equal(t, "https://example.com/campaign/1", candidates[0].Link)
		assert.Equal(t, "2025年10月31日まで", candidates[0].DateText)
		assert.Equal(t, "最大10,000ポイント", candidates[0].RewardText)

		// Missing optional sub-selectors yield empty/derived fields,
		// the candidate itself survives.
		assert.Equal(t, "終了しました", candidates[1].Title)
		assert.Equal(t, "", candidates[1].DateText)
		assert.Equal(t, candidates[1].Title, candidates[1].RewardText)
	})

	t.Run("drops candidates missing title or link", func(t *testing.T) {
		html := `
<html><body>
  <div class="card"><h3 class="title">リンクなし</h3></div>
  <div class="card"><a class="more" href="/campaign/3">詳細</a></div>
  <div class="card">
    <h3 class="title">有効な候補</h3>
    <a class="more" href="/campaign/4">詳細</a>
  </div>
</body></html>`

		src := htmlSource(entity.Selectors{
			List:  "div.card",
			Title: ".title",
			Link:  "a.more",
		})

		candidates, err := p.Parse([]byte(html), src)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "有効な候補", candidates[0].Title)
	})

	t.Run("default list selector scans anchors", func(t *testing.T) {
		html := `<html><body>
  <a href="https://other.example.com/cp">キャッシュバック実施中</a>
  <a href="/relative">ポイント還元</a>
</body></html>`

		candidates, err := p.Parse([]byte(html), htmlSource(entity.Selectors{}))
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, "https://other.example.com/cp", candidates[0].Link)
		assert.Equal(t, "https://example.com/relative", candidates[1].Link)
	})

	t.Run("no matches yields empty slice not error", func(t *testing.T) {
		src := htmlSource(entity.Selectors{List: "div.nothing"})
		candidates, err := p.Parse([]byte("<html><body><p>empty</p></body></html>"), src)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("near text carries surrounding content", func(t *testing.T) {
		html := `
<html><body>
  <div class="card">
    <h3 class="title">特別企画</h3>
    <a class="more" href="/campaign/5">詳細</a>
    <p>新規のお客様限定</p>
  </div>
</body></html>`

		src := htmlSource(entity.Selectors{List: "div.card", Title: ".title", Link: "a.more"})
		candidates, err := p.Parse([]byte(html), src)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Contains(t, candidates[0].NearText, "新規のお客様限定")
	})
}
