package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/contextlint/contextlint/internal/audit"
	"github.com/contextlint/contextlint/internal/config"
	"github.com/contextlint/contextlint/internal/fetcher"
	"github.com/contextlint/contextlint/internal/history"
	"github.com/contextlint/contextlint/internal/regress"
	"github.com/contextlint/contextlint/internal/types"
)

// registerAuditFlags adds the flags the config loader knows how to layer.
func registerAuditFlags(cmd *cobra.Command) {
	cmd.Flags().Int("timeout", 15, "HTTP timeout in seconds")
	cmd.Flags().Int("max-pages", 10, "maximum pages to audit per site")
	cmd.Flags().Bool("single", false, "audit only the given page, not the site")
	cmd.Flags().Bool("save", false, "persist the report to the history store")
	cmd.Flags().Float64("regression-threshold", 5.0, "score drop that counts as a regression")
	cmd.Flags().StringSlice("bots", nil, "AI bots to check (default: built-in list)")
	cmd.Flags().String("format", "", "output format")
}

func auditCmd() *cobra.Command {
	var (
		concurrency       int
		useBrowser        bool
		failUnder         float64
		failOnBlockedBots bool
	)

	cmd := &cobra.Command{
		Use:   "audit [url]",
		Short: "Audit a website for LLM readiness",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Verbose)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			auditor, cleanup, err := buildAuditor(cfg, useBrowser, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			var progress audit.ProgressFunc
			if cfg.Verbose {
				progress = func(status string) { fmt.Fprintln(os.Stderr, status) }
			}

			var overall float64
			var robots types.RobotsReport
			var persistable *types.AuditReport

			if cfg.Single {
				report, err := auditor.AuditURL(ctx, args[0])
				if err != nil {
					return err
				}
				overall, robots, persistable = report.OverallScore, report.Robots, report
				if err := printJSON(report); err != nil {
					return err
				}
			} else {
				report, err := auditor.AuditSite(ctx, args[0], cfg.MaxPages, concurrency, progress)
				if err != nil {
					return err
				}
				overall, robots = report.OverallScore, report.Robots
				persistable = siteToAuditReport(report)
				if err := printJSON(report); err != nil {
					return err
				}
			}

			if cfg.Save {
				if err := saveAndCheckRegression(persistable, cfg, logger); err != nil {
					// History problems are reported but never fail the audit.
					logger.Warn("history save failed", "error", err)
				}
			}

			if code := audit.ExitCode(overall, robots, failUnder, failOnBlockedBots); code != audit.ExitOK {
				os.Exit(code)
			}
			return nil
		},
	}

	registerAuditFlags(cmd)
	cmd.Flags().IntVar(&concurrency, "concurrency", 3, "concurrent page fetches")
	cmd.Flags().BoolVar(&useBrowser, "browser", false, "render pages in headless Chromium")
	cmd.Flags().Float64Var(&failUnder, "fail-under", -1, "exit 1 when the overall score is below this")
	cmd.Flags().BoolVar(&failOnBlockedBots, "fail-on-blocked-bots", false, "exit 2 when any AI bot is blocked")

	return cmd
}

func batchCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch [url...]",
		Short: "Audit several seed URLs in one run",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Verbose)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			auditor, cleanup, err := buildAuditor(cfg, false, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := auditor.RunBatch(ctx, args, audit.BatchOptions{
				Single:      cfg.Single,
				MaxPages:    cfg.MaxPages,
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}

	registerAuditFlags(cmd)
	cmd.Flags().IntVar(&concurrency, "concurrency", 3, "concurrent page fetches per site")

	return cmd
}

// buildAuditor assembles the auditor from resolved config. The cleanup
// function shuts down the browser when one was launched.
func buildAuditor(cfg *config.Config, useBrowser bool, logger *slog.Logger) (*audit.Auditor, func(), error) {
	opts := audit.Options{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
		Bots:    cfg.Bots,
		Logger:  logger,
	}
	cleanup := func() {}

	if useBrowser {
		browser, err := fetcher.NewBrowserPageFetcher(true, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("start browser: %w", err)
		}
		opts.Pages = browser
		cleanup = func() { _ = browser.Close() }
	}

	return audit.New(opts), cleanup, nil
}

// siteToAuditReport projects a site report onto the persistable single-
// report shape; the history store indexes the pillar scores either way.
func siteToAuditReport(site *types.SiteAuditReport) *types.AuditReport {
	return &types.AuditReport{
		URL:          site.URL,
		OverallScore: site.OverallScore,
		Robots:       site.Robots,
		LlmsTxt:      site.LlmsTxt,
		SchemaOrg:    site.SchemaOrg,
		Content:      site.Content,
		Errors:       site.Errors,
	}
}

// saveAndCheckRegression persists the report and, when a baseline exists,
// prints the regression diff against it.
func saveAndCheckRegression(report *types.AuditReport, cfg *config.Config, logger *slog.Logger) error {
	path, err := history.DefaultPath()
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	previous, err := store.GetLatestReport(report.URL)
	if err != nil {
		return err
	}

	id, err := store.Save(report)
	if err != nil {
		return err
	}
	logger.Info("report saved", "id", id, "url", report.URL)

	if previous != nil {
		result := regress.Detect(report, previous, cfg.RegressionThreshold)
		if result.HasRegression {
			fmt.Fprintf(os.Stderr, "REGRESSION: %s dropped %.1f points (%.1f -> %.1f, threshold %.1f)\n",
				result.URL, -result.Delta, result.PreviousScore, result.CurrentScore, result.Threshold)
		}
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
