package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"BreadthSentinel/internal/runner"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Evaluate a lookback window once and merge it into history",
	Long: `Fetch the breadth series, classify every day in the lookback window and
merge the rows into the history file. Rows are stored as derived so they never
overwrite authoritative daily records, unless --authoritative is given.

Examples:
  sentinel backfill
  sentinel backfill --days 180
  sentinel backfill --days 60 --authoritative`,
	RunE: runBackfill,
}

var (
	backfillDays          int
	backfillAuthoritative bool
	backfillQuiet         bool
)

func init() {
	rootCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().IntVar(&backfillDays, "days", runner.DefaultLookbackDays, "Lookback in calendar days (minimum 30)")
	backfillCmd.Flags().BoolVar(&backfillAuthoritative, "authoritative", false, "Store rows as authoritative instead of derived")
	backfillCmd.Flags().BoolVar(&backfillQuiet, "quiet", false, "Print only the summary, not the per-day table")
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rec := openRecorder(cfg)
	defer rec.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := newRunner(cfg, rec).Run(ctx, runner.Options{
		LookbackDays:  backfillDays,
		Mode:          runner.ModeBackfill,
		Authoritative: backfillAuthoritative,
	})
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if !backfillQuiet {
		renderRows(out, summary.Rows)
	}
	renderSummary(out, summary)
	fmt.Fprintf(os.Stderr, "history: %s\n", cfg.History.File)
	return nil
}
