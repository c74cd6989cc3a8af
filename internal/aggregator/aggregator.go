package aggregator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ObiAU/syncview/internal/cache"
	"github.com/ObiAU/syncview/internal/models"
	"github.com/ObiAU/syncview/internal/recommend"
	"github.com/ObiAU/syncview/internal/remote"
)

const (
	DefaultTargetLang         = "ko"
	DefaultTranslateWorkers   = 5
	DefaultProcessingInterval = 10 * time.Minute
	DefaultDigestSize         = 3
	DefaultSentRetention      = 48 * time.Hour
)

// Notifier delivers enriched articles to subscribers. title is the headline
// to show; it is empty when the article carries its own.
type Notifier interface {
	Subscriptions() []models.Subscription
	SendArticle(ctx context.Context, chatID int64, title string, article *models.EnrichedArticle) error
}

// Aggregator builds enriched article views on top of cached remote
// operations and serves the cache and ranking to presentation code.
type Aggregator struct {
	ops      remote.Operations
	cache    *cache.Cache
	sent     *cache.Cache
	index    *recommend.Index
	notifier Notifier
	logger   zerolog.Logger

	targetLang         string
	translateWorkers   int
	processingInterval time.Duration
	digestSize         int
	sentRetention      time.Duration

	degradations atomic.Int64
	digestsSent  atomic.Int64

	mu      sync.RWMutex
	running bool
}

// Option mutates aggregator configuration.
type Option func(*Aggregator)

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

func WithIndex(index *recommend.Index) Option {
	return func(a *Aggregator) {
		if index != nil {
			a.index = index
		}
	}
}

// WithNotifier enables digest delivery in Run.
func WithNotifier(notifier Notifier) Option {
	return func(a *Aggregator) {
		a.notifier = notifier
	}
}

// WithSentMarkers keeps digest delivery markers in c instead of the shared
// cache, so clearing the shared cache does not re-send delivered articles.
func WithSentMarkers(c *cache.Cache) Option {
	return func(a *Aggregator) {
		if c != nil {
			a.sent = c
		}
	}
}

func WithTargetLang(lang string) Option {
	return func(a *Aggregator) {
		if lang != "" {
			a.targetLang = lang
		}
	}
}

// WithTranslateWorkers bounds concurrent title translations.
func WithTranslateWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.translateWorkers = n
		}
	}
}

// WithDigest configures the digest loop: how often it runs, how many
// articles each subscriber gets per run, and how long a delivered article
// is remembered.
func WithDigest(interval time.Duration, size int, retention time.Duration) Option {
	return func(a *Aggregator) {
		if interval > 0 {
			a.processingInterval = interval
		}
		if size > 0 {
			a.digestSize = size
		}
		if retention > 0 {
			a.sentRetention = retention
		}
	}
}

// New creates an aggregator. ops is normally a *remote.Service sharing c, so
// that every remote result goes through the cache. Without WithSentMarkers,
// delivery markers also live in c and ClearCache forgets them.
func New(ops remote.Operations, c *cache.Cache, options ...Option) *Aggregator {
	a := &Aggregator{
		ops:                ops,
		cache:              c,
		sent:               c,
		index:              recommend.DefaultIndex(),
		logger:             zerolog.Nop(),
		targetLang:         DefaultTargetLang,
		translateWorkers:   DefaultTranslateWorkers,
		processingInterval: DefaultProcessingInterval,
		digestSize:         DefaultDigestSize,
		sentRetention:      DefaultSentRetention,
	}
	for _, option := range options {
		option(a)
	}

	return a
}

// FetchNews returns the news list for source.
func (a *Aggregator) FetchNews(ctx context.Context, source string) ([]models.ArticleSummary, error) {
	return a.ops.FetchNews(ctx, source)
}

// TranslateTitles returns a copy of articles with TitleKo filled in. A title
// that fails to translate keeps its original text.
func (a *Aggregator) TranslateTitles(ctx context.Context, articles []models.ArticleSummary, lang string) []models.ArticleSummary {
	if lang == "" {
		lang = a.targetLang
	}

	translated := make([]models.ArticleSummary, len(articles))
	copy(translated, articles)

	var g errgroup.Group
	g.SetLimit(a.translateWorkers)

	for i := range translated {
		g.Go(func() error {
			title := translated[i].Title
			text, err := a.ops.Translate(ctx, title, lang)
			if err != nil || text == "" {
				if err != nil {
					a.logger.Debug().Err(err).Str("title", title).Msg("title translation failed")
				}
				text = title
			}
			translated[i].TitleKo = text
			return nil
		})
	}
	_ = g.Wait()

	return translated
}

// RankByTopic orders articles by relevance to topic.
func (a *Aggregator) RankByTopic(articles []models.ArticleSummary, topic string, limit int) []recommend.Scored {
	return a.index.Rank(articles, topic, limit)
}

// Topics lists the configured topics.
func (a *Aggregator) Topics() []string {
	return a.index.Topics()
}

func (a *Aggregator) Index() *recommend.Index {
	return a.index
}

func (a *Aggregator) GetCached(key string) (any, bool) {
	return a.cache.Get(key)
}

func (a *Aggregator) SetCached(key string, value any, ttl time.Duration) {
	a.cache.Set(key, value, ttl)
}

func (a *Aggregator) DeleteCached(key string) {
	a.cache.Delete(key)
}

func (a *Aggregator) ClearCache() {
	a.cache.Clear()
}

func (a *Aggregator) CacheSize() int {
	return a.cache.Size()
}

// Degradations is the number of enrichment branches that fell back to
// their default since start.
func (a *Aggregator) Degradations() int64 {
	return a.degradations.Load()
}

func (a *Aggregator) Stats() map[string]any {
	return map[string]any{
		"cache":        a.cache.Stats(),
		"degradations": a.degradations.Load(),
		"digests_sent": a.digestsSent.Load(),
		"running":      a.isRunning(),
	}
}

func (a *Aggregator) isRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

func (a *Aggregator) setRunning(running bool) {
	a.mu.Lock()
	a.running = running
	a.mu.Unlock()
}
