// Command contextlint audits websites for LLM readiness: robots.txt AI-bot
// access, llms.txt presence, Schema.org coverage, and content density.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/contextlint/contextlint/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "contextlint",
		Short: "contextlint — LLM readiness auditor",
		Long: `contextlint audits websites for how accessible, parseable, and citable
their content is to AI crawlers and retrieval-augmented agents.

A site audit produces a 0-100 Readiness Score across four pillars:
  • Robots     (25) — which AI bots robots.txt lets in
  • llms.txt   (10) — presence of llms.txt / llms-full.txt
  • Schema.org (25) — JSON-LD structured data coverage
  • Content    (40) — density, structure, and readability of the markdown`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(recommendCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process logger; debug level under --verbose.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the contextlint version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("contextlint %s\n", config.Version)
		},
	}
}
