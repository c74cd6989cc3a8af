package remote

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ObiAU/syncview/internal/cache"
	"github.com/ObiAU/syncview/internal/models"
)

// Cache lifetimes per operation class.
const (
	NewsTTL        = 300 * time.Second
	DetailTTL      = 1800 * time.Second
	SummaryTTL     = 1800 * time.Second
	SentimentTTL   = 1800 * time.Second
	TranslationTTL = 3600 * time.Second
)

const (
	DefaultSource      = "BBC"
	DefaultCallTimeout = 30 * time.Second

	keyPrefixRunes = 100
)

// Service fronts an Operations implementation with the shared cache. Every
// call checks the cache first and performs at most one remote call on a miss.
type Service struct {
	ops         Operations
	cache       *cache.Cache
	logger      zerolog.Logger
	callTimeout time.Duration
	flight      *singleflight.Group
}

// Option mutates service configuration.
type Option func(*Service)

// WithLogger injects a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCallTimeout bounds each remote call. Zero disables the bound.
func WithCallTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout >= 0 {
			s.callTimeout = timeout
		}
	}
}

// WithSingleFlight collapses concurrent misses for the same key into one
// remote call.
func WithSingleFlight() Option {
	return func(s *Service) {
		s.flight = &singleflight.Group{}
	}
}

// NewService wraps ops with cache-backed lookups.
func NewService(ops Operations, c *cache.Cache, options ...Option) *Service {
	s := &Service{
		ops:         ops,
		cache:       c,
		logger:      zerolog.Nop(),
		callTimeout: DefaultCallTimeout,
	}
	for _, option := range options {
		option(s)
	}

	return s
}

// FetchNews returns the article list for source, BBC when empty.
func (s *Service) FetchNews(ctx context.Context, source string) ([]models.ArticleSummary, error) {
	if strings.TrimSpace(source) == "" {
		source = DefaultSource
	}

	return cached(ctx, s, OpNews, NewsKey(source), NewsTTL, func(callCtx context.Context) ([]models.ArticleSummary, error) {
		articles, err := s.ops.FetchNews(callCtx, source)
		if err != nil {
			return nil, err
		}
		if articles == nil {
			articles = []models.ArticleSummary{}
		}
		return articles, nil
	})
}

// FetchDetail returns the detail payload for url.
func (s *Service) FetchDetail(ctx context.Context, url string) (models.ArticleDetail, error) {
	return cached(ctx, s, OpDetail, DetailKey(url), DetailTTL, func(callCtx context.Context) (models.ArticleDetail, error) {
		return s.ops.FetchDetail(callCtx, url)
	})
}

// FetchSummary returns the source-language summary for url.
func (s *Service) FetchSummary(ctx context.Context, url string) (string, error) {
	return cached(ctx, s, OpSummary, SummaryKey(url), SummaryTTL, func(callCtx context.Context) (string, error) {
		return s.ops.FetchSummary(callCtx, url)
	})
}

// Translate returns text translated to targetLang. Blank text is returned as
// an empty string without touching the cache or the remote.
func (s *Service) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	return cached(ctx, s, OpTranslate, TranslateKey(targetLang, text), TranslationTTL, func(callCtx context.Context) (string, error) {
		return s.ops.Translate(callCtx, text, targetLang)
	})
}

// AnalyzeSentiment classifies text. Blank text yields nil without touching
// the cache or the remote. A nil result from the remote is not cached.
func (s *Service) AnalyzeSentiment(ctx context.Context, text string) (*models.Sentiment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	return cached(ctx, s, OpSentiment, SentimentKey(text), SentimentTTL, func(callCtx context.Context) (*models.Sentiment, error) {
		return s.ops.AnalyzeSentiment(callCtx, text)
	})
}

func cached[T any](
	ctx context.Context,
	s *Service,
	op string,
	key string,
	ttl time.Duration,
	call func(context.Context) (T, error),
) (T, error) {
	if value, ok := cache.GetAs[T](s.cache, key); ok {
		s.logger.Debug().Str("op", op).Str("key", logKey(key)).Msg("cache hit")
		return value, nil
	}
	s.logger.Debug().Str("op", op).Str("key", logKey(key)).Msg("cache miss")

	load := func(loadCtx context.Context) (T, error) {
		callCtx := loadCtx
		if s.callTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(loadCtx, s.callTimeout)
			defer cancel()
		}

		value, err := call(callCtx)
		if err != nil {
			var zero T
			return zero, Wrap(op, err)
		}
		if storable(value) {
			s.cache.Set(key, value, ttl)
		}
		return value, nil
	}

	if s.flight == nil {
		return load(ctx)
	}

	// The shared call outlives any single caller; each caller still stops
	// waiting when its own ctx is done.
	results := s.flight.DoChan(key, func() (any, error) {
		return load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, Wrap(op, ctx.Err())
	case res := <-results:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		value, _ := res.Val.(T)
		return value, nil
	}
}

func storable(value any) bool {
	if sentiment, ok := value.(*models.Sentiment); ok {
		return sentiment != nil
	}
	return true
}

// NewsKey is the cache key for a source's news list.
func NewsKey(source string) string {
	return OpNews + "_" + source
}

// DetailKey is the cache key for an article detail.
func DetailKey(url string) string {
	return OpDetail + "_" + url
}

// SummaryKey is the cache key for an article summary.
func SummaryKey(url string) string {
	return OpSummary + "_" + url
}

// TranslateKey is the cache key for a translation. Texts sharing their first
// 100 characters share an entry.
func TranslateKey(targetLang, text string) string {
	return OpTranslate + "_" + targetLang + "_" + prefix(text, keyPrefixRunes)
}

// SentimentKey is the cache key for a sentiment result, keyed like
// TranslateKey by text prefix.
func SentimentKey(text string) string {
	return OpSentiment + "_" + prefix(text, keyPrefixRunes)
}

func prefix(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}

func logKey(key string) string {
	return prefix(key, 60)
}

var _ Operations = (*Service)(nil)
