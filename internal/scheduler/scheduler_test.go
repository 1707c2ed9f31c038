package scheduler

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"BreadthSentinel/internal/history"
	"BreadthSentinel/internal/model"
	"BreadthSentinel/internal/runner"
)

type fakeRunner struct {
	summary *model.RunSummary
	err     error
	opts    []runner.Options
}

func (f *fakeRunner) Run(_ context.Context, opts runner.Options) (*model.RunSummary, error) {
	f.opts = append(f.opts, opts)
	return f.summary, f.err
}

type fakeSender struct{ sent []string }

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.sent = append(f.sent, text)
	return nil
}

func strPtr(s string) *string { return &s }

func summaryWith(state model.State, lamp bool, prev *string) *model.RunSummary {
	s := &model.RunSummary{
		GeneratedDays: 60,
		FromDate:      "2024-03-25",
		ToDate:        "2024-06-28",
		Latest:        &model.BreadthRow{Date: "2024-06-28", State: state, Mode: model.ModeLite, Risk: model.RiskLow, LampOn: lamp},
	}
	if prev != nil {
		s.Previous = &model.HistoryRecord{Date: "2024-06-27", State: prev}
	}
	return s
}

func newTestScheduler(t *testing.T, r *fakeRunner) (*Scheduler, *fakeSender, *history.Store) {
	t.Helper()
	store := history.NewStore(filepath.Join(t.TempDir(), "h.json"), 50)
	sender := &fakeSender{}
	return NewScheduler(context.Background(), r, store, sender, 95), sender, store
}

func TestShouldAlert(t *testing.T) {
	tests := []struct {
		name    string
		summary *model.RunSummary
		want    bool
	}{
		{"nil", nil, false},
		{"lamp on", summaryWith(model.StateWatchLite, true, strPtr("WATCH (LITE)")), true},
		{"quiet, no previous", summaryWith(model.StateNoSignal, false, nil), false},
		{"quiet, unchanged", summaryWith(model.StateNoSignal, false, strPtr("NO SIGNAL")), false},
		{"lamp went off", summaryWith(model.StateNoSignal, false, strPtr("WATCH (LITE)")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldAlert(tt.summary); got != tt.want {
				t.Errorf("ShouldAlert = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDailyTask(t *testing.T) {
	tests := []struct {
		name     string
		runner   *fakeRunner
		wantSent string
	}{
		{"alert", &fakeRunner{summary: summaryWith(model.StateTriggered, true, nil)}, "TRIGGERED"},
		{"silent", &fakeRunner{summary: summaryWith(model.StateNoSignal, false, strPtr("NO SIGNAL"))}, ""},
		{"failure", &fakeRunner{err: model.DataUnavailable("no_data_trin")}, "no_data_trin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, sender, _ := newTestScheduler(t, tt.runner)
			s.RunDailyNow()

			if len(tt.runner.opts) != 1 || tt.runner.opts[0].Mode != runner.ModeLive || tt.runner.opts[0].LookbackDays != 95 {
				t.Fatalf("runner options = %+v", tt.runner.opts)
			}
			if tt.wantSent == "" {
				if len(sender.sent) != 0 {
					t.Errorf("unexpected message: %v", sender.sent)
				}
				return
			}
			if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], tt.wantSent) {
				t.Errorf("sent = %v, want message containing %q", sender.sent, tt.wantSent)
			}
		})
	}
}

func TestHandleCommand(t *testing.T) {
	r := &fakeRunner{summary: summaryWith(model.StateWatchLiteBase, true, nil)}
	s, _, store := newTestScheduler(t, r)

	if got := s.HandleCommand(context.Background(), "/status"); !strings.Contains(got, "暂无历史记录") {
		t.Errorf("/status on empty history = %q", got)
	}

	var records []model.HistoryRecord
	for _, d := range []string{"2024-06-24", "2024-06-25", "2024-06-26"} {
		records = append(records, model.HistoryRecord{Date: d, State: strPtr("NO SIGNAL")})
	}
	records[2].State = strPtr("WATCH (LITE)")
	if err := store.Save(records); err != nil {
		t.Fatal(err)
	}

	if got := s.HandleCommand(context.Background(), "/status"); !strings.Contains(got, "2024-06-26") || !strings.Contains(got, "WATCH (LITE)") {
		t.Errorf("/status = %q", got)
	}
	got := s.HandleCommand(context.Background(), "/history 2")
	if !strings.Contains(got, "2024-06-25") || strings.Contains(got, "2024-06-24") {
		t.Errorf("/history 2 = %q", got)
	}
	if got := s.HandleCommand(context.Background(), "/run"); !strings.Contains(got, "WATCH (LITE-BASE)") {
		t.Errorf("/run = %q", got)
	}
	if got := s.HandleCommand(context.Background(), "hello"); got != helpText {
		t.Errorf("unknown command = %q", got)
	}
}

func TestRegister_InvalidCron(t *testing.T) {
	s, _, _ := newTestScheduler(t, &fakeRunner{})
	if err := s.Register("not a cron"); err == nil {
		t.Fatal("expected error")
	}
	if err := s.Register("0 30 22 * * 1-5"); err != nil {
		t.Fatalf("Register: %v", err)
	}
}
