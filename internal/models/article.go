package models

import (
	"strings"
)

// ArticleSummary is one entry of a source's news list.
type ArticleSummary struct {
	Title       string `json:"title"`
	Link        string `json:"link,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Published   string `json:"published,omitempty"`
	Source      string `json:"source,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	TitleKo     string `json:"title_ko,omitempty"`
}

// ArticleURL returns the link of the article, preferring Link over URL.
func (a ArticleSummary) ArticleURL() string {
	if a.Link != "" {
		return a.Link
	}
	return a.URL
}

// ArticleDetail is the raw detail payload for a single article.
type ArticleDetail struct {
	Title       string `json:"title,omitempty"`
	Content     string `json:"content,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Source      string `json:"source,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Sentiment is the structured result of a sentiment analysis call.
type Sentiment struct {
	Sentiment string  `json:"sentiment"`
	Label     string  `json:"label"`
	Score     float64 `json:"score"`
}

// EnrichedArticle combines detail, summary, translations and sentiment for
// one article URL.
type EnrichedArticle struct {
	ArticleDetail
	URL       string     `json:"url"`
	Summary   string     `json:"summary"`
	SummaryKo string     `json:"summary_ko"`
	ContentKo string     `json:"content_ko"`
	Sentiment *Sentiment `json:"sentiment"`
}

// TargetText picks the text used for sentiment analysis: the first non-blank
// of summary, body, description and title.
func TargetText(summary string, detail ArticleDetail) string {
	for _, candidate := range []string{summary, detail.Content, detail.Description, detail.Title} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

// Subscription is one chat's topic/source preference for digests.
type Subscription struct {
	ChatID int64  `json:"chat_id"`
	UserID int64  `json:"user_id"`
	Topic  string `json:"topic"`
	Source string `json:"source"`
}
