package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ObiAU/syncview/internal/aggregator"
	"github.com/ObiAU/syncview/internal/cache"
	"github.com/ObiAU/syncview/internal/server"
	"github.com/ObiAU/syncview/internal/telegram"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the Telegram bot and the digest loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()

			var (
				aggOptions    []aggregator.Option
				serverOptions = []server.Option{server.WithLogger(a.logger.With().Str("component", "http").Logger())}
			)

			sent := cache.New(cache.WithSweepInterval(a.cfg.CacheSweepInterval))
			defer sent.Close()
			aggOptions = append(aggOptions, aggregator.WithSentMarkers(sent))

			if a.cfg.TelegramEnabled() {
				bot, err := telegram.NewBot(a.cfg.TelegramToken, a.cfg.TelegramWebhookURL, a.index, sourceNames(),
					a.logger.With().Str("component", "telegram").Logger())
				if err != nil {
					return err
				}
				if err := bot.Start(ctx); err != nil {
					return fmt.Errorf("failed to start telegram bot: %w", err)
				}
				aggOptions = append(aggOptions, aggregator.WithNotifier(bot))
				serverOptions = append(serverOptions, server.WithWebhook(bot))
			} else {
				a.logger.Info().Msg("TELEGRAM_BOT_TOKEN or TELEGRAM_WEBHOOK_URL not set, telegram disabled")
			}

			agg := a.newAggregator(aggOptions...)
			srv := server.New(agg, a.cfg.ServerPort, serverOptions...)

			a.logger.Info().Str("mode", a.cfg.RemoteMode).Msg("starting SyncView")

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Run(gctx) })
			g.Go(func() error { return agg.Run(gctx) })

			err = g.Wait()
			a.logger.Info().Msg("SyncView stopped gracefully")
			return err
		},
	}
}
