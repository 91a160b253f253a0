package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"campaign-radar/internal/domain/entity"
	"campaign-radar/internal/infra/parser"
)

func TestKeywordFilter_Matches(t *testing.T) {
	src := &entity.SourceConfig{
		IncludeKeywords: []string{"キャンペーン", "口座開設"},
		ExcludeKeywords: []string{"終了", "抽選のみ"},
	}
	filter := NewKeywordFilter(src)

	tests := []struct {
		name string
		c    parser.RawCandidate
		want bool
	}{
		{
			name: "include keyword in title",
			c:    parser.RawCandidate{Title: "新規口座開設で5000P"},
			want: true,
		},
		{
			name: "include keyword in reward text",
			c:    parser.RawCandidate{Title: "お知らせ", RewardText: "キャンペーン特典あり"},
			want: true,
		},
		{
			name: "no include keyword",
			c:    parser.RawCandidate{Title: "システムメンテナンスのお知らせ"},
			want: false,
		},
		{
			name: "exclude keyword wins",
			c:    parser.RawCandidate{Title: "口座開設キャンペーンは終了しました"},
			want: false,
		},
		{
			name: "exclude lottery-only",
			c:    parser.RawCandidate{Title: "キャンペーン（抽選のみ）"},
			want: false,
		},
		{
			name: "near text rescues bare link",
			c: parser.RawCandidate{
				Title:    "詳しくはこちら",
				NearText: "新規口座開設キャンペーン 最大5,000ポイント 詳しくはこちら",
			},
			want: true,
		},
		{
			name: "near text also fails",
			c: parser.RawCandidate{
				Title:    "詳しくはこちら",
				NearText: "会社概要 採用情報",
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter.Matches(tt.c))
		})
	}
}

func TestKeywordFilter_EmptyIncludePassesAll(t *testing.T) {
	filter := NewKeywordFilter(&entity.SourceConfig{ExcludeKeywords: []string{"終了"}})

	assert.True(t, filter.Matches(parser.RawCandidate{Title: "なんでも通る"}))
	assert.False(t, filter.Matches(parser.RawCandidate{Title: "これは終了した"}))
}

func TestKeywordFilter_FullWidthFolding(t *testing.T) {
	filter := NewKeywordFilter(&entity.SourceConfig{IncludeKeywords: []string{"5000P"}})

	// 全角英数字は半角に畳まれてから照合される
	assert.True(t, filter.Matches(parser.RawCandidate{Title: "新規で５０００Ｐ"}))
}
