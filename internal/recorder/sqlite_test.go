package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"BreadthSentinel/internal/model"
)

func openTest(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "sentinel.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RecordRun(t *testing.T) {
	r := openTest(t)
	id := NewRunID()
	evt := &RunEvent{
		RunID:         id,
		StartedAt:     time.Date(2024, 3, 4, 22, 30, 0, 0, time.UTC),
		Mode:          "live",
		LookbackDays:  95,
		Status:        StatusOK,
		GeneratedDays: 64,
		FromDate:      "2023-12-01",
		ToDate:        "2024-03-04",
		LitCount:      3,
		TriggerCount:  1,
		LatestState:   string(model.StateTriggered),
	}
	if err := r.RecordRun(evt); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	// Same run id replaces the row.
	evt.LitCount = 4
	if err := r.RecordRun(evt); err != nil {
		t.Fatalf("RecordRun again: %v", err)
	}

	var n, lit int
	var state string
	if err := r.db.QueryRow(`SELECT COUNT(*), MAX(lit_count), MAX(latest_state) FROM runs WHERE run_id = ?`, id).Scan(&n, &lit, &state); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 1 || lit != 4 || state != "TRIGGERED" {
		t.Errorf("got n=%d lit=%d state=%q", n, lit, state)
	}
}

func TestSQLiteRecorder_RecordSignals(t *testing.T) {
	r := openTest(t)
	adv, dec, net := 1200, 1800, -600
	osc := -42.5
	up := true
	rows := []model.BreadthRow{
		{Date: "2024-03-01", Advances: &adv, Declines: &dec, NetAdvances: &net, Oscillator: &osc, TrendCondition: &up,
			State: model.StateWatchLite, Mode: model.ModeLite, Risk: model.RiskMid, LampOn: true},
		{Date: "2024-03-04", State: model.StateNoSignal, Mode: model.ModeLite, Risk: model.RiskLow},
	}
	if err := r.RecordSignals("run-1", rows); err != nil {
		t.Fatalf("RecordSignals: %v", err)
	}

	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM signal_days WHERE run_id = 'run-1'`).Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 2 {
		t.Fatalf("rows = %d, want 2", count)
	}

	var advances, oscillator any
	if err := r.db.QueryRow(`SELECT advances, oscillator FROM signal_days WHERE date = '2024-03-04'`).Scan(&advances, &oscillator); err != nil {
		t.Fatalf("query: %v", err)
	}
	if advances != nil || oscillator != nil {
		t.Errorf("absent fields should be NULL, got %v %v", advances, oscillator)
	}
}

func TestNewRunID_Unique(t *testing.T) {
	if NewRunID() == NewRunID() {
		t.Error("run ids should differ")
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordRun(&RunEvent{}); err != nil {
		t.Error(err)
	}
	if err := r.RecordSignals("x", nil); err != nil {
		t.Error(err)
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}
}
