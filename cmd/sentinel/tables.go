package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"BreadthSentinel/internal/model"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderSummary(w io.Writer, s *model.RunSummary) {
	t := newTable(w)
	t.SetTitle("Run %s", s.RunID)
	t.AppendRows([]table.Row{
		{"generated_days", s.GeneratedDays},
		{"from_date", s.FromDate},
		{"to_date", s.ToDate},
		{"lit_count", s.LitCount},
		{"trigger_count", s.TriggerCount},
	})
	if s.Latest != nil {
		t.AppendRow(table.Row{"latest_state", string(s.Latest.State)})
	}
	t.Render()
}

func renderRows(w io.Writer, rows []model.BreadthRow) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Date", "Adv", "Dec", "Net", "Highs", "Lows", "Thr", "TRIN", "Osc", "Trend", "Cluster", "State", "Mode", "Lamp"})
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.Date, intCell(r.Advances), intCell(r.Declines), intCell(r.NetAdvances),
			intCell(r.NewHighs), intCell(r.NewLows), intCell(r.ThresholdCount),
			floatCell(r.Trin, 2), floatCell(r.Oscillator, 1), trendCell(r.TrendCondition),
			r.ClusterSignalCount, string(r.State), string(r.Mode), lampCell(r.LampOn),
		})
	}
	t.Render()
}

func renderHistory(w io.Writer, records []model.HistoryRecord) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Date", "Adv", "Dec", "Highs", "Lows", "TRIN", "State", "Mode", "Risk", "Lamp", "Derived"})
	for _, r := range records {
		lamp := r.LampOn != nil && *r.LampOn
		t.AppendRow(table.Row{
			r.Date, intCell(r.Advances), intCell(r.Declines), intCell(r.NewHighs), intCell(r.NewLows),
			floatCell(r.Trin, 2), strCell(r.State), strCell(r.Mode), strCell(r.Risk), lampCell(lamp), r.Derived,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "", "", "", "records", len(records)})
	t.Render()
}

func intCell(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func floatCell(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

func strCell(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func trendCell(v *bool) string {
	switch {
	case v == nil:
		return "-"
	case *v:
		return "up"
	default:
		return "down"
	}
}

func lampCell(on bool) string {
	if on {
		return "ON"
	}
	return ""
}
