package aggregator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ObiAU/syncview/internal/models"
	"github.com/ObiAU/syncview/internal/remote"
)

// Run delivers topic digests to subscribers every processing interval until
// ctx is cancelled. Without a notifier it only waits for cancellation.
func (a *Aggregator) Run(ctx context.Context) error {
	a.setRunning(true)
	defer a.setRunning(false)

	if a.notifier == nil {
		a.logger.Info().Msg("no notifier configured, digest delivery disabled")
		<-ctx.Done()
		return nil
	}

	a.logger.Info().Dur("interval", a.processingInterval).Int("size", a.digestSize).Msg("digest loop started")

	ticker := time.NewTicker(a.processingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("digest loop stopped")
			return nil
		case <-ticker.C:
			if err := a.processDigests(ctx); err != nil {
				a.logger.Error().Err(err).Msg("error processing digests")
			}
		}
	}
}

func (a *Aggregator) processDigests(ctx context.Context) error {
	subscriptions := a.notifier.Subscriptions()
	if len(subscriptions) == 0 {
		return nil
	}

	lists := a.fetchSources(ctx, subscriptions)

	var failed int
	for _, sub := range subscriptions {
		articles, ok := lists[sourceOf(sub)]
		if !ok {
			continue
		}
		if err := a.deliver(ctx, sub, articles); err != nil {
			failed++
			a.logger.Warn().Err(err).Int64("chat_id", sub.ChatID).Msg("digest delivery failed")
		}
	}

	if failed > 0 {
		return fmt.Errorf("digest failed for %d of %d subscriptions", failed, len(subscriptions))
	}
	return nil
}

// fetchSources loads each distinct subscribed source once.
func (a *Aggregator) fetchSources(ctx context.Context, subscriptions []models.Subscription) map[string][]models.ArticleSummary {
	sources := make(map[string]bool)
	for _, sub := range subscriptions {
		sources[sourceOf(sub)] = true
	}

	lists := make(map[string][]models.ArticleSummary, len(sources))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for source := range sources {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()

			articles, err := a.ops.FetchNews(ctx, src)
			if err != nil {
				a.logger.Error().Err(err).Str("source", src).Msg("error fetching news")
				return
			}

			mu.Lock()
			lists[src] = articles
			mu.Unlock()
		}(source)
	}

	wg.Wait()
	return lists
}

func (a *Aggregator) deliver(ctx context.Context, sub models.Subscription, articles []models.ArticleSummary) error {
	sent := 0
	for _, scored := range a.index.Rank(articles, sub.Topic, 0) {
		if sent >= a.digestSize {
			break
		}
		if scored.Score <= 0 {
			break
		}

		url := scored.Article.ArticleURL()
		if url == "" {
			continue
		}
		key := SentKey(sub.ChatID, url)
		if _, done := a.sent.Get(key); done {
			continue
		}

		enriched, err := a.Enrich(ctx, url)
		if err != nil {
			a.logger.Warn().Err(err).Str("url", url).Msg("skipping article that could not be enriched")
			continue
		}
		var title string
		if enriched.Title == "" {
			title = scored.Article.Title
		}

		if err := a.notifier.SendArticle(ctx, sub.ChatID, title, enriched); err != nil {
			return fmt.Errorf("failed to send article: %w", err)
		}

		a.sent.Set(key, true, a.sentRetention)
		a.digestsSent.Add(1)
		sent++
	}

	return nil
}

// SentKey is the marker key recording that url was delivered to chatID.
func SentKey(chatID int64, url string) string {
	return fmt.Sprintf("sent_%d_%s", chatID, url)
}

func sourceOf(sub models.Subscription) string {
	if sub.Source == "" {
		return remote.DefaultSource
	}
	return sub.Source
}
