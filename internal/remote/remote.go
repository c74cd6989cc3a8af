package remote

import (
	"context"

	"github.com/ObiAU/syncview/internal/models"
)

// Operation names used in errors, logs and cache keys.
const (
	OpNews      = "news"
	OpDetail    = "detail"
	OpSummary   = "summary"
	OpTranslate = "translate"
	OpSentiment = "sentiment"
)

// Operations are the remote calls an enriched article is built from.
type Operations interface {
	FetchNews(ctx context.Context, source string) ([]models.ArticleSummary, error)
	FetchDetail(ctx context.Context, url string) (models.ArticleDetail, error)
	FetchSummary(ctx context.Context, url string) (string, error)
	Translate(ctx context.Context, text, targetLang string) (string, error)
	AnalyzeSentiment(ctx context.Context, text string) (*models.Sentiment, error)
}
