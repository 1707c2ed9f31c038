// Package runner drives one evaluation: fetch, join, classify, then merge the
// result into the persisted history.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"BreadthSentinel/internal/calculator"
	"BreadthSentinel/internal/history"
	"BreadthSentinel/internal/model"
	"BreadthSentinel/internal/parse"
	"BreadthSentinel/internal/recorder"
	"BreadthSentinel/internal/strategy"
)

// Lookback bounds in calendar days.
const (
	DefaultLookbackDays = 95
	MinLookbackDays     = 30
)

// Mode selects how replayed rows are flagged in history.
type Mode string

const (
	// ModeLive stores the latest row as authoritative and earlier rows as derived.
	ModeLive Mode = "live"
	// ModeBackfill stores every row as derived unless Authoritative is set.
	ModeBackfill Mode = "backfill"
)

// Options configures a single run.
type Options struct {
	LookbackDays  int
	Mode          Mode
	Authoritative bool
}

// Source yields the raw inputs of one run.
type Source interface {
	Collect(ctx context.Context, lookbackDays int) (*model.RawInputs, error)
}

// Runner owns the history store for the duration of a run. Runs are serialized.
type Runner struct {
	source   Source
	store    *history.Store
	recorder recorder.Recorder
	now      func() time.Time

	mu sync.Mutex
}

// New creates a Runner. A nil recorder disables audit logging.
func New(source Source, store *history.Store, rec recorder.Recorder) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Runner{
		source:   source,
		store:    store,
		recorder: rec,
		now:      time.Now,
	}
}

// Store returns the history store the runner writes to.
func (r *Runner) Store() *history.Store { return r.store }

// ClampLookback maps 0 (unset) to the default and raises anything below the
// minimum, negatives included, to MinLookbackDays.
func ClampLookback(days int) int {
	if days == 0 {
		return DefaultLookbackDays
	}
	if days < MinLookbackDays {
		return MinLookbackDays
	}
	return days
}

// Run evaluates the lookback window and merges every row into history. On any
// failure before the save the stored history is left untouched.
func (r *Runner) Run(ctx context.Context, opts Options) (*model.RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if opts.Mode == "" {
		opts.Mode = ModeLive
	}
	opts.LookbackDays = ClampLookback(opts.LookbackDays)
	started := r.now().UTC()
	evt := &recorder.RunEvent{
		RunID:        recorder.NewRunID(),
		StartedAt:    started,
		Mode:         string(opts.Mode),
		LookbackDays: opts.LookbackDays,
	}

	summary, err := r.run(ctx, opts, started)
	if err != nil {
		evt.Status = recorder.StatusFailed
		evt.Reason = failureReason(err)
		if recErr := r.recorder.RecordRun(evt); recErr != nil {
			log.Printf("[WARN] Failed to record run: %v", recErr)
		}
		return nil, err
	}

	summary.RunID = evt.RunID
	evt.Status = recorder.StatusOK
	evt.GeneratedDays = summary.GeneratedDays
	evt.FromDate = summary.FromDate
	evt.ToDate = summary.ToDate
	evt.LitCount = summary.LitCount
	evt.TriggerCount = summary.TriggerCount
	evt.LatestState = string(summary.Latest.State)
	if err := r.recorder.RecordRun(evt); err != nil {
		log.Printf("[WARN] Failed to record run: %v", err)
	}
	if err := r.recorder.RecordSignals(evt.RunID, summary.Rows); err != nil {
		log.Printf("[WARN] Failed to record signals: %v", err)
	}

	log.Printf("[INFO] Run %s (%s): %d days %s..%s, lit=%d triggered=%d, latest=%s",
		evt.RunID, opts.Mode, summary.GeneratedDays, summary.FromDate, summary.ToDate,
		summary.LitCount, summary.TriggerCount, summary.Latest.State)
	return summary, nil
}

func (r *Runner) run(ctx context.Context, opts Options, started time.Time) (*model.RunSummary, error) {
	cutoff := started.AddDate(0, 0, -opts.LookbackDays).Format(parse.DateLayout)

	raw, err := r.source.Collect(ctx, opts.LookbackDays)
	if err != nil {
		return nil, err
	}
	rows, err := strategy.BuildRows(raw.Series)
	if err != nil {
		return nil, err
	}
	rows, err = strategy.ApplyCutoff(rows, cutoff)
	if err != nil {
		return nil, err
	}
	rows = strategy.Classify(rows, calculator.NewIndexSeries(raw.Index))

	latest := rows[len(rows)-1]
	hist := r.store.Load()
	previous := lastBefore(hist, latest.Date)

	for i, row := range rows {
		derived := isDerived(opts, i == len(rows)-1)
		hist = history.Upsert(hist, model.RecordFromRow(row, derived))
	}
	if err := r.store.Save(hist); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}

	summary := &model.RunSummary{
		GeneratedDays: len(rows),
		FromDate:      rows[0].Date,
		ToDate:        latest.Date,
		Latest:        &latest,
		Previous:      previous,
		Rows:          rows,
	}
	for _, row := range rows {
		if row.LampOn {
			summary.LitCount++
		}
		if row.Triggered {
			summary.TriggerCount++
		}
	}
	return summary, nil
}

func isDerived(opts Options, latest bool) bool {
	if opts.Authoritative {
		return false
	}
	if opts.Mode == ModeLive {
		return !latest
	}
	return true
}

// lastBefore returns the most recent stored record dated before date.
func lastBefore(hist []model.HistoryRecord, date string) *model.HistoryRecord {
	for i := len(hist) - 1; i >= 0; i-- {
		if hist[i].Date < date {
			rec := hist[i]
			return &rec
		}
	}
	return nil
}

func failureReason(err error) string {
	var runErr *model.RunError
	if errors.As(err, &runErr) {
		return runErr.Reason
	}
	return err.Error()
}
