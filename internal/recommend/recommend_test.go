package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ObiAU/syncview/internal/models"
)

func TestDefaultIndex_Taxonomy(t *testing.T) {
	t.Parallel()

	idx := DefaultIndex()

	assert.Equal(t, []string{"정치", "경제", "사회", "국제", "IT/과학", "스포츠"}, idx.Topics())

	sizes := map[string]int{
		"정치":    20,
		"경제":    32,
		"사회":    37,
		"국제":    21,
		"IT/과학": 36,
		"스포츠":   26,
	}
	for topic, size := range sizes {
		assert.Len(t, idx.Keywords(topic), size, topic)
	}
}

func TestIndex_Score(t *testing.T) {
	t.Parallel()

	idx := DefaultIndex()

	tests := []struct {
		name    string
		article models.ArticleSummary
		topic   string
		want    float64
	}{
		{
			name:    "two economy keywords",
			article: models.ArticleSummary{Title: "market inflation"},
			topic:   "경제",
			want:    2.0 / 32.0,
		},
		{
			name:    "case folded across fields",
			article: models.ArticleSummary{Title: "NASA", Description: "Rocket", Summary: "SATELLITE"},
			topic:   "IT/과학",
			want:    3.0 / 36.0,
		},
		{
			name:    "unknown topic",
			article: models.ArticleSummary{Title: "market inflation"},
			topic:   "날씨",
			want:    0,
		},
		{
			name:    "no match",
			article: models.ArticleSummary{Title: "quiet day"},
			topic:   "정치",
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, idx.Score(tt.article, tt.topic), 1e-12)
		})
	}
}

func TestIndex_ScoreIsDeterministic(t *testing.T) {
	t.Parallel()

	idx := DefaultIndex()
	article := models.ArticleSummary{Title: "Bank earnings beat", Summary: "stocks rally"}

	first := idx.Score(article, "경제")
	for range 10 {
		assert.Equal(t, first, idx.Score(article, "경제"))
	}
}

func TestIndex_RankOrdersAndTruncates(t *testing.T) {
	t.Parallel()

	idx := DefaultIndex()
	articles := []models.ArticleSummary{
		{Title: "quiet day"},
		{Title: "market"},
		{Title: "market inflation gdp"},
		{Title: "bank"},
	}

	ranked := idx.Rank(articles, "경제", 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, "market inflation gdp", ranked[0].Article.Title)
	assert.Equal(t, "market", ranked[1].Article.Title, "equal scores keep input order")
	assert.Equal(t, "bank", ranked[2].Article.Title)

	top := idx.Rank(articles, "경제", 1)
	require.Len(t, top, 1)
	assert.Equal(t, "market inflation gdp", top[0].Article.Title)

	all := idx.Rank(articles, "경제", 0)
	assert.Len(t, all, 3, "non-matching articles are dropped when any match")
}

func TestIndex_RankFallsBackToInputOrder(t *testing.T) {
	t.Parallel()

	idx := DefaultIndex()
	articles := []models.ArticleSummary{{Title: "a"}, {Title: "b"}, {Title: "c"}}

	ranked := idx.Rank(articles, "스포츠", 10)
	assert.Equal(t, articles, Articles(ranked))
	for _, scored := range ranked {
		assert.Zero(t, scored.Score)
	}
}

func TestNewIndex_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewIndex([]Topic{{Name: " ", Keywords: []string{"a"}}})
	assert.Error(t, err)

	_, err = NewIndex([]Topic{{Name: "a", Keywords: []string{"x"}}, {Name: "a", Keywords: []string{"y"}}})
	assert.Error(t, err)

	_, err = NewIndex([]Topic{{Name: "a", Keywords: []string{" ", ""}}})
	assert.Error(t, err)

	idx, err := NewIndex([]Topic{{Name: "a", Keywords: []string{"Oil", "oil", " OIL "}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"oil"}, idx.Keywords("a"))
	assert.True(t, idx.Has("a"))
	assert.False(t, idx.Has("b"))
}
