package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"BreadthSentinel/internal/collector"
	"BreadthSentinel/internal/history"
	"BreadthSentinel/internal/model"
	"BreadthSentinel/internal/recorder"
)

var clock = time.Date(2024, 6, 28, 23, 0, 0, 0, time.UTC)

// cutoff for the default 95-day lookback at clock.
const defaultCutoff = "2024-03-25"

type fakeRecorder struct {
	runs    []recorder.RunEvent
	signals map[string]int
}

func (f *fakeRecorder) RecordRun(evt *recorder.RunEvent) error {
	f.runs = append(f.runs, *evt)
	return nil
}

func (f *fakeRecorder) RecordSignals(runID string, rows []model.BreadthRow) error {
	if f.signals == nil {
		f.signals = map[string]int{}
	}
	f.signals[runID] += len(rows)
	return nil
}

func (f *fakeRecorder) Close() error { return nil }

func weekdays(from, to time.Time) []string {
	var out []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			out = append(out, d.Format("2006-01-02"))
		}
	}
	return out
}

// quietFetcher serves strong-breadth days with no base signal.
func quietFetcher(dates []string) *collector.MockFetcher {
	series := func(v float64) []model.DailyValue {
		out := make([]model.DailyValue, len(dates))
		for i, d := range dates {
			out[i] = model.DailyValue{Date: d, Value: v}
		}
		return out
	}
	return &collector.MockFetcher{
		Series: map[string][]model.DailyValue{
			"ADVN":  series(2000),
			"DECN":  series(1000),
			"NYHGH": series(50),
			"NYLOW": series(5),
			"TRIN":  series(0.8),
		},
	}
}

func newTestRunner(t *testing.T, m *collector.MockFetcher) (*Runner, *history.Store, *fakeRecorder) {
	t.Helper()
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), history.DefaultLimit)
	rec := &fakeRecorder{}
	r := New(collector.NewCollector(m, m, "^NYA"), store, rec)
	r.now = func() time.Time { return clock }
	return r, store, rec
}

func fullRange() []string {
	return weekdays(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), clock)
}

func TestClampLookback(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 95}, {-5, 30}, {-1, 30}, {1, 30}, {29, 30}, {30, 30}, {95, 95}, {365, 365},
	}
	for _, tt := range tests {
		if got := ClampLookback(tt.in); got != tt.want {
			t.Errorf("ClampLookback(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRun_LiveSummaryAndDerivedFlags(t *testing.T) {
	r, store, rec := newTestRunner(t, quietFetcher(fullRange()))

	summary, err := r.Run(context.Background(), Options{Mode: ModeLive})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := weekdays(time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC), clock)
	if summary.GeneratedDays != len(want) {
		t.Errorf("GeneratedDays = %d, want %d", summary.GeneratedDays, len(want))
	}
	if summary.FromDate != defaultCutoff || summary.ToDate != "2024-06-28" {
		t.Errorf("range = %s..%s", summary.FromDate, summary.ToDate)
	}
	if summary.LitCount != 0 || summary.TriggerCount != 0 {
		t.Errorf("lit=%d triggered=%d, want 0/0", summary.LitCount, summary.TriggerCount)
	}
	if summary.Latest.State != model.StateNoSignal {
		t.Errorf("latest state = %s", summary.Latest.State)
	}

	hist := store.Load()
	if len(hist) != len(want) {
		t.Fatalf("history has %d records, want %d", len(hist), len(want))
	}
	for i, rec := range hist {
		last := i == len(hist)-1
		if rec.Derived == last {
			t.Errorf("%s derived = %v", rec.Date, rec.Derived)
		}
	}

	if len(rec.runs) != 1 || rec.runs[0].Status != recorder.StatusOK || rec.runs[0].RunID != summary.RunID {
		t.Errorf("recorded runs = %+v", rec.runs)
	}
	if rec.signals[summary.RunID] != len(want) {
		t.Errorf("recorded %d signal rows", rec.signals[summary.RunID])
	}
}

func TestRun_BackfillDerivedPolicy(t *testing.T) {
	tests := []struct {
		name          string
		authoritative bool
		wantDerived   bool
	}{
		{"derived", false, true},
		{"authoritative", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store, _ := newTestRunner(t, quietFetcher(fullRange()))
			if _, err := r.Run(context.Background(), Options{Mode: ModeBackfill, Authoritative: tt.authoritative}); err != nil {
				t.Fatalf("Run: %v", err)
			}
			for _, rec := range store.Load() {
				if rec.Derived != tt.wantDerived {
					t.Fatalf("%s derived = %v, want %v", rec.Date, rec.Derived, tt.wantDerived)
				}
			}
		})
	}
}

func TestRun_BackfillKeepsAuthoritativeRecords(t *testing.T) {
	r, store, _ := newTestRunner(t, quietFetcher(fullRange()))

	state := "TRIGGERED"
	lamp := true
	kept := model.HistoryRecord{Date: "2024-05-01", State: &state, LampOn: &lamp}
	if err := store.Save([]model.HistoryRecord{kept}); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Run(context.Background(), Options{Mode: ModeBackfill}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, ok := history.Find(store.Load(), "2024-05-01")
	if !ok {
		t.Fatal("record missing")
	}
	if got.Derived || got.State == nil || *got.State != "TRIGGERED" || got.Advances != nil {
		t.Errorf("authoritative record overwritten: %+v", got)
	}
}

func TestRun_PreviousRecord(t *testing.T) {
	r, store, _ := newTestRunner(t, quietFetcher(fullRange()))

	watch := "WATCH (LITE)"
	if err := store.Save([]model.HistoryRecord{{Date: "2024-06-27", State: &watch}}); err != nil {
		t.Fatal(err)
	}
	summary, err := r.Run(context.Background(), Options{Mode: ModeLive})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Previous == nil || summary.Previous.Date != "2024-06-27" || *summary.Previous.State != watch {
		t.Errorf("previous = %+v", summary.Previous)
	}
}

func TestRun_FailureLeavesHistoryUntouched(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *collector.MockFetcher)
		kind   error
		reason string
	}{
		{
			name:   "missing advances",
			mutate: func(m *collector.MockFetcher) { m.Series["ADVN"] = nil },
			kind:   model.ErrDataUnavailable,
			reason: "no_data_advances",
		},
		{
			name: "disjoint dates",
			mutate: func(m *collector.MockFetcher) {
				m.Series["NYLOW"] = []model.DailyValue{{Date: "2019-01-02", Value: 5}}
			},
			kind:   model.ErrDataUnavailable,
			reason: "no_common_dates",
		},
		{
			name: "all rows before cutoff",
			mutate: func(m *collector.MockFetcher) {
				old := quietFetcher(weekdays(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)))
				m.Series = old.Series
			},
			kind:   model.ErrEmptyResult,
			reason: "no_rows_after_cutoff",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := quietFetcher(fullRange())
			tt.mutate(m)
			r, store, rec := newTestRunner(t, m)

			_, err := r.Run(context.Background(), Options{Mode: ModeLive})
			if !errors.Is(err, tt.kind) {
				t.Fatalf("got %v, want %v", err, tt.kind)
			}
			var runErr *model.RunError
			if !errors.As(err, &runErr) || runErr.Reason != tt.reason {
				t.Fatalf("reason = %v, want %s", err, tt.reason)
			}
			if _, statErr := os.Stat(store.Path()); !os.IsNotExist(statErr) {
				t.Errorf("history file written on failure")
			}
			if len(rec.runs) != 1 || rec.runs[0].Status != recorder.StatusFailed || rec.runs[0].Reason != tt.reason {
				t.Errorf("recorded runs = %+v", rec.runs)
			}
		})
	}
}

func TestRun_IsRepeatable(t *testing.T) {
	r, store, _ := newTestRunner(t, quietFetcher(fullRange()))
	if _, err := r.Run(context.Background(), Options{Mode: ModeLive}); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(store.Path())
	if _, err := r.Run(context.Background(), Options{Mode: ModeLive}); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(store.Path())
	if string(first) != string(second) {
		t.Error("second identical run changed the history file")
	}
}
