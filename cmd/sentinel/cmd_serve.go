package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"BreadthSentinel/internal/notifier"
	"BreadthSentinel/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily scheduler and Telegram command loop",
	Long: `Run the cron-driven daily evaluation. Alerts are sent to Telegram when the
warning lamp is on, when the state changed since the previous stored day, or
when a run fails. Set RUN_ON_START=true to evaluate once at startup.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	log.Println("[INFO] BreadthSentinel starting...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateService(); err != nil {
		return err
	}

	rec := openRecorder(cfg)
	defer rec.Close()

	run := newRunner(cfg, rec)
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, run, run.Store(), tn, cfg.History.LookbackDays)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing daily task now")
		go sched.RunDailyNow()
	}

	log.Printf("[INFO] BreadthSentinel is running (daily cron %q). Press Ctrl+C to stop.", cfg.Schedule.DailyCron)
	<-ctx.Done()

	log.Println("[INFO] shutdown signal received, stopping...")
	return nil
}
