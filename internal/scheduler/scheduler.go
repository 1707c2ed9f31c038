package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"BreadthSentinel/internal/history"
	"BreadthSentinel/internal/model"
	"BreadthSentinel/internal/notifier"
	"BreadthSentinel/internal/runner"

	"github.com/robfig/cron/v3"
)

// DefaultHistoryLines is how many records /history shows without an argument.
const DefaultHistoryLines = 10

// Evaluator runs one breadth evaluation.
type Evaluator interface {
	Run(ctx context.Context, opts runner.Options) (*model.RunSummary, error)
}

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the cron task and chat commands.
type Scheduler struct {
	Cron         *cron.Cron
	Runner       Evaluator
	History      *history.Store
	Notifier     Sender
	LookbackDays int
	Ctx          context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, r Evaluator, store *history.Store, n Sender, lookbackDays int) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Runner:       r,
		History:      store,
		Notifier:     n,
		LookbackDays: lookbackDays,
		Ctx:          ctx,
	}
}

// Register adds the daily evaluation task.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	ctx := s.Cron.Stop()
	<-ctx.Done()
	log.Println("[INFO] scheduler stopped")
}

// RunDailyNow executes the daily task immediately (RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	log.Println("[INFO] running daily breadth evaluation")
	summary, err := s.Runner.Run(s.Ctx, runner.Options{LookbackDays: s.LookbackDays, Mode: runner.ModeLive})
	if err != nil {
		log.Printf("[ERROR] daily evaluation: %v", err)
		s.trySend(notifier.FormatRunFailure(err))
		return
	}
	if !ShouldAlert(summary) {
		log.Printf("[INFO] %s: %s, lamp off and unchanged, no alert", summary.ToDate, summary.Latest.State)
		return
	}
	s.trySend(notifier.FormatDailyReport(summary))
}

// ShouldAlert is true when the latest lamp is on or the state moved since the
// previous stored day.
func ShouldAlert(summary *model.RunSummary) bool {
	if summary == nil || summary.Latest == nil {
		return false
	}
	if summary.Latest.LampOn {
		return true
	}
	prev := summary.Previous
	return prev != nil && prev.State != nil && *prev.State != string(summary.Latest.State)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/status", "查看状态":
		records := s.History.Load()
		if len(records) == 0 {
			return notifier.FormatStatus(nil)
		}
		return notifier.FormatStatus(&records[len(records)-1])
	case "/history", "查看历史":
		limit := DefaultHistoryLines
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
				limit = n
			}
		}
		return notifier.FormatHistory(s.History.Load(), limit)
	case "/run", "立即评估":
		summary, err := s.Runner.Run(ctx, runner.Options{LookbackDays: s.LookbackDays, Mode: runner.ModeLive})
		if err != nil {
			log.Printf("[ERROR] manual evaluation: %v", err)
			return notifier.FormatRunFailure(err)
		}
		return notifier.FormatDailyReport(summary)
	default:
		return helpText
	}
}

const helpText = "可用命令:\n• /status 查看状态\n• /history [N] 查看历史\n• /run 立即评估"

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
