package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ObiAU/syncview/internal/recommend"
)

func newEnrichCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "enrich <url>",
		Short: "Print the enriched view of one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			article, err := a.newAggregator().Enrich(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), article)
		},
	}
}

type newsOptions struct {
	source    string
	topic     string
	limit     int
	translate string
}

func newNewsCmd(opts *rootOptions) *cobra.Command {
	newsOpts := &newsOptions{}

	cmd := &cobra.Command{
		Use:   "news",
		Short: "List a source's news, optionally ranked by topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if newsOpts.topic != "" && !a.index.Has(newsOpts.topic) {
				return fmt.Errorf("unknown topic %q", newsOpts.topic)
			}

			agg := a.newAggregator()
			articles, err := agg.FetchNews(cmd.Context(), newsOpts.source)
			if err != nil {
				return err
			}

			if newsOpts.translate != "" {
				articles = agg.TranslateTitles(cmd.Context(), articles, newsOpts.translate)
			}

			if newsOpts.topic == "" {
				return writeJSON(cmd.OutOrStdout(), articles)
			}
			return writeJSON(cmd.OutOrStdout(), agg.RankByTopic(articles, newsOpts.topic, newsOpts.limit))
		},
	}

	cmd.Flags().StringVar(&newsOpts.source, "source", "BBC", "news source (BBC, Reuters, CNN)")
	cmd.Flags().StringVar(&newsOpts.topic, "topic", "", "rank articles by relevance to this topic")
	cmd.Flags().IntVar(&newsOpts.limit, "limit", recommend.DefaultLimit, "maximum ranked articles, 0 for all")
	cmd.Flags().StringVar(&newsOpts.translate, "translate", "", "translate titles to this language (e.g. ko)")

	return cmd
}

func newTopicsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List the topic taxonomy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			topics := make([]recommend.Topic, 0, len(a.index.Topics()))
			for _, name := range a.index.Topics() {
				topics = append(topics, recommend.Topic{Name: name, Keywords: a.index.Keywords(name)})
			}
			return writeJSON(cmd.OutOrStdout(), topics)
		},
	}
}
