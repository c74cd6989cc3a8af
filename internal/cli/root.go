// Package cli wires configuration, the cache, remote operations and the
// aggregator into the syncview command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	logLevel string
}

// NewRootCmd builds the syncview command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "syncview",
		Short:         "Cached news enrichment and topic recommendations",
		Long:          "syncview fetches news, enriches articles with summaries, Korean translations and sentiment, and ranks them by topic.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newEnrichCmd(opts))
	rootCmd.AddCommand(newNewsCmd(opts))
	rootCmd.AddCommand(newTopicsCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the command line with ctx and returns the first error.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func SetVersionInfo(v, c string) {
	version = v
	commit = c
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "syncview %s (commit: %s)\n", version, commit)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
