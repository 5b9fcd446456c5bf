package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/contextlint/contextlint/internal/audit"
	"github.com/contextlint/contextlint/internal/config"
	"github.com/contextlint/contextlint/internal/history"
	"github.com/contextlint/contextlint/internal/recommend"
	"github.com/contextlint/contextlint/internal/urlutil"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect saved audit reports",
	}
	cmd.AddCommand(historyListCmd(), historyShowCmd(), historyClearCmd())
	return cmd
}

func openStore() (*history.Store, error) {
	path, err := history.DefaultPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}

func historyListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list [url]",
		Short: "List saved audits for a URL, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.ListEntries(urlutil.EnsureScheme(args[0]), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("No history for this URL.")
				return nil
			}
			return printJSON(entries)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to list")
	return cmd
}

func historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a saved report by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := store.GetReport(id)
			if err != nil {
				return err
			}
			if report == nil {
				return fmt.Errorf("no report with id %d", id)
			}
			return printJSON(report)
		},
	}
}

func historyClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [url]",
		Short: "Delete all saved audits for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := store.DeleteURL(urlutil.EnsureScheme(args[0]))
			if err != nil {
				return err
			}
			cmd.Printf("Deleted %d entries.\n", deleted)
			return nil
		},
	}
}

func recommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend [url]",
		Short: "Audit a page and suggest the highest-impact fixes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Verbose)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			auditor := audit.New(audit.Options{
				Timeout: time.Duration(cfg.Timeout) * time.Second,
				Bots:    cfg.Bots,
				Logger:  logger,
			})

			report, err := auditor.AuditURL(ctx, args[0])
			if err != nil {
				return err
			}

			recs := recommend.Generate(report)
			if len(recs) == 0 {
				cmd.Println("Nothing to improve — full marks.")
				return nil
			}
			return printJSON(recs)
		},
	}

	registerAuditFlags(cmd)
	return cmd
}
