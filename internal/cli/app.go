package cli

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ObiAU/syncview/internal/aggregator"
	"github.com/ObiAU/syncview/internal/ai"
	"github.com/ObiAU/syncview/internal/backend"
	"github.com/ObiAU/syncview/internal/cache"
	"github.com/ObiAU/syncview/internal/config"
	"github.com/ObiAU/syncview/internal/recommend"
	"github.com/ObiAU/syncview/internal/remote"
	"github.com/ObiAU/syncview/internal/sources"
)

// app holds the components shared by every command. Close releases the
// cache sweeper.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	cache   *cache.Cache
	index   *recommend.Index
	service *remote.Service
}

func newApp(opts *rootOptions) (*app, error) {
	cfg := config.Load()

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger := config.InitLogger(level)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	index, err := config.LoadTopics(cfg.TopicsFile)
	if err != nil {
		return nil, err
	}

	c := cache.New(
		cache.WithSweepInterval(cfg.CacheSweepInterval),
		cache.WithLogger(logger.With().Str("component", "cache").Logger()),
	)

	serviceOptions := []remote.Option{
		remote.WithLogger(logger.With().Str("component", "remote").Logger()),
		remote.WithCallTimeout(cfg.RemoteTimeout),
	}
	if cfg.SingleFlight {
		serviceOptions = append(serviceOptions, remote.WithSingleFlight())
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		cache:   c,
		index:   index,
		service: remote.NewService(buildOperations(cfg, logger), c, serviceOptions...),
	}, nil
}

func (a *app) newAggregator(extra ...aggregator.Option) *aggregator.Aggregator {
	options := []aggregator.Option{
		aggregator.WithLogger(a.logger.With().Str("component", "aggregator").Logger()),
		aggregator.WithIndex(a.index),
		aggregator.WithTranslateWorkers(a.cfg.TranslateWorkers),
		aggregator.WithDigest(a.cfg.ProcessingInterval, a.cfg.DigestSize, a.cfg.SentRetention),
	}
	return aggregator.New(a.service, a.cache, append(options, extra...)...)
}

func (a *app) Close() {
	a.cache.Close()
}

func buildOperations(cfg *config.Config, logger zerolog.Logger) remote.Operations {
	if cfg.RemoteMode != config.RemoteModeDirect {
		logger.Debug().Str("url", cfg.APIURL).Msg("using SyncView backend")
		return backend.NewClient(cfg.APIURL, nil)
	}

	var assistant sources.Assistant
	if cfg.OpenAIAPIKey != "" {
		assistant = ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		logger.Warn().Msg("OPENAI_API_KEY is not set: translation is disabled and sentiment uses the keyword lexicon")
	}

	return sources.NewDirect(
		sources.NewFeedClient(sources.DefaultFeeds, nil),
		sources.NewExtractor(nil),
		assistant,
		logger.With().Str("component", "direct").Logger(),
	)
}

func sourceNames() []string {
	names := make([]string, len(sources.DefaultFeeds))
	for i, feed := range sources.DefaultFeeds {
		names[i] = feed.Name
	}
	return names
}
