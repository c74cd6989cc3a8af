package sources

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ObiAU/syncview/internal/ai"
	"github.com/ObiAU/syncview/internal/models"
	"github.com/ObiAU/syncview/internal/remote"
)

// Assistant is the model-backed half of direct mode.
type Assistant interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
	AnalyzeSentiment(ctx context.Context, text string) (*models.Sentiment, error)
	Summarize(ctx context.Context, text string) (string, error)
}

const (
	detailMemoTTL      = time.Minute
	detailFetchTimeout = 30 * time.Second
)

// Direct implements the remote operations without the SyncView backend: news
// comes from RSS feeds, details from the article pages, and language work
// from the assistant. Without an assistant, summaries use the opening
// sentences, sentiment uses the keyword lexicon, and translation fails.
type Direct struct {
	feeds     *FeedClient
	extractor *Extractor
	assistant Assistant
	logger    zerolog.Logger

	// FetchDetail and FetchSummary of one article share a page download.
	flight  singleflight.Group
	mu      sync.Mutex
	details map[string]memoDetail
}

type memoDetail struct {
	detail    models.ArticleDetail
	expiresAt time.Time
}

// NewDirect composes direct-mode operations. assistant may be nil.
func NewDirect(feeds *FeedClient, extractor *Extractor, assistant Assistant, logger zerolog.Logger) *Direct {
	return &Direct{
		feeds:     feeds,
		extractor: extractor,
		assistant: assistant,
		logger:    logger,
		details:   make(map[string]memoDetail),
	}
}

func (d *Direct) FetchNews(ctx context.Context, source string) ([]models.ArticleSummary, error) {
	return d.feeds.FetchNews(ctx, source)
}

func (d *Direct) FetchDetail(ctx context.Context, url string) (models.ArticleDetail, error) {
	return d.detail(ctx, url)
}

// detail downloads url at most once per detailMemoTTL, joining a download
// already in flight.
func (d *Direct) detail(ctx context.Context, url string) (models.ArticleDetail, error) {
	if detail, ok := d.recall(url); ok {
		return detail, nil
	}

	results := d.flight.DoChan(url, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), detailFetchTimeout)
		defer cancel()

		detail, err := d.extractor.FetchDetail(fetchCtx, url)
		if err != nil {
			return nil, err
		}
		d.remember(url, detail)
		return detail, nil
	})

	select {
	case <-ctx.Done():
		return models.ArticleDetail{}, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return models.ArticleDetail{}, res.Err
		}
		return res.Val.(models.ArticleDetail), nil
	}
}

func (d *Direct) recall(url string) (models.ArticleDetail, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	memo, ok := d.details[url]
	if !ok || !time.Now().Before(memo.expiresAt) {
		return models.ArticleDetail{}, false
	}
	return memo.detail, true
}

func (d *Direct) remember(url string, detail models.ArticleDetail) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	for key, memo := range d.details {
		if !now.Before(memo.expiresAt) {
			delete(d.details, key)
		}
	}
	d.details[url] = memoDetail{detail: detail, expiresAt: now.Add(detailMemoTTL)}
}

func (d *Direct) FetchSummary(ctx context.Context, url string) (string, error) {
	detail, err := d.detail(ctx, url)
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(detail.Content)
	if content == "" || utf8.RuneCountInString(content) < shortContentRunes {
		return content, nil
	}

	if d.assistant != nil {
		summary, err := d.assistant.Summarize(ctx, content)
		if err == nil && strings.TrimSpace(summary) != "" {
			return summary, nil
		}
		d.logger.Warn().Err(err).Str("url", url).Msg("model summary failed, using opening sentences")
	}

	return FirstSentences(content), nil
}

func (d *Direct) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if d.assistant == nil {
		return "", remote.NewStatusError(remote.OpTranslate, http.StatusServiceUnavailable,
			"translation is unavailable: no OpenAI API key configured")
	}
	return d.assistant.Translate(ctx, text, targetLang)
}

// AnalyzeSentiment prefers the assistant and falls back to the keyword
// lexicon when it is missing or fails.
func (d *Direct) AnalyzeSentiment(ctx context.Context, text string) (*models.Sentiment, error) {
	if d.assistant == nil {
		return ai.LexiconSentiment(text), nil
	}

	sentiment, err := d.assistant.AnalyzeSentiment(ctx, text)
	if err != nil {
		d.logger.Warn().Err(err).Msg("model sentiment failed, using keyword lexicon")
		return ai.LexiconSentiment(text), nil
	}
	return sentiment, nil
}

var _ remote.Operations = (*Direct)(nil)
