// Package recommend scores and ranks articles by topic relevance.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ObiAU/syncview/internal/models"
)

// Topic names a category and the keywords that signal it.
type Topic struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Scored pairs an article with its relevance to a topic.
type Scored struct {
	Article models.ArticleSummary `json:"article"`
	Score   float64               `json:"score"`
}

// Index maps topics to keyword sets. It is read-only after construction and
// safe for concurrent use.
type Index struct {
	order    []string
	keywords map[string][]string
}

// NewIndex builds an index from topics. Keywords are lowercased and
// de-duplicated so the score denominator counts distinct keywords.
func NewIndex(topics []Topic) (*Index, error) {
	idx := &Index{keywords: make(map[string][]string, len(topics))}

	for _, topic := range topics {
		name := strings.TrimSpace(topic.Name)
		if name == "" {
			return nil, fmt.Errorf("topic name is empty")
		}
		if _, exists := idx.keywords[name]; exists {
			return nil, fmt.Errorf("duplicate topic %q", name)
		}

		seen := make(map[string]bool, len(topic.Keywords))
		keywords := make([]string, 0, len(topic.Keywords))
		for _, keyword := range topic.Keywords {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword == "" || seen[keyword] {
				continue
			}
			seen[keyword] = true
			keywords = append(keywords, keyword)
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("topic %q has no keywords", name)
		}

		idx.order = append(idx.order, name)
		idx.keywords[name] = keywords
	}

	return idx, nil
}

// DefaultIndex returns the index for DefaultTopics.
func DefaultIndex() *Index {
	idx, err := NewIndex(DefaultTopics)
	if err != nil {
		panic(err)
	}
	return idx
}

// Topics lists topic names in configuration order.
func (idx *Index) Topics() []string {
	return append([]string(nil), idx.order...)
}

// Keywords returns the keyword set of topic, or nil if it is unknown.
func (idx *Index) Keywords(topic string) []string {
	keywords, ok := idx.keywords[topic]
	if !ok {
		return nil
	}
	return append([]string(nil), keywords...)
}

// Has reports whether topic is known.
func (idx *Index) Has(topic string) bool {
	_, ok := idx.keywords[topic]
	return ok
}

// Score returns the share of the topic's keywords found in the article's
// title, description and summary. Matching is case-insensitive substring
// matching, so "un" also matches inside "fund". Unknown topics score 0.
func (idx *Index) Score(article models.ArticleSummary, topic string) float64 {
	keywords, ok := idx.keywords[topic]
	if !ok || len(keywords) == 0 {
		return 0
	}

	text := strings.ToLower(article.Title + " " + article.Description + " " + article.Summary)

	matched := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			matched++
		}
	}

	return float64(matched) / float64(len(keywords))
}

// Rank orders articles by descending relevance to topic. Articles with a
// positive score are kept; if none match, every article is ranked instead.
// Ties keep input order. A limit of zero or less returns all candidates.
func (idx *Index) Rank(articles []models.ArticleSummary, topic string, limit int) []Scored {
	all := make([]Scored, 0, len(articles))
	matching := make([]Scored, 0, len(articles))
	for _, article := range articles {
		scored := Scored{Article: article, Score: idx.Score(article, topic)}
		all = append(all, scored)
		if scored.Score > 0 {
			matching = append(matching, scored)
		}
	}

	candidates := matching
	if len(candidates) == 0 {
		candidates = all
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates
}

// Articles strips scores from a ranking.
func Articles(ranked []Scored) []models.ArticleSummary {
	articles := make([]models.ArticleSummary, len(ranked))
	for i, scored := range ranked {
		articles[i] = scored.Article
	}
	return articles
}
