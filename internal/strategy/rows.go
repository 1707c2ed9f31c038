package strategy

import (
	"sort"

	"BreadthSentinel/internal/calculator"
	"BreadthSentinel/internal/model"
	"BreadthSentinel/internal/parse"
)

// BuildRows joins the raw breadth series on the dates common to all required
// series and evaluates the base signal per day. Rows come back in ascending date order.
// The trin series is optional and only merged where present.
func BuildRows(series model.SeriesSet) ([]model.BreadthRow, error) {
	for _, key := range model.RequiredSeries {
		m, ok := series[key]
		if !ok || m == nil {
			return nil, model.DataUnavailable("insufficient_required_series")
		}
		if len(m) == 0 {
			return nil, model.DataUnavailable("no_data_" + string(key))
		}
	}

	dates := commonDates(series)
	if len(dates) == 0 {
		return nil, model.DataUnavailable("no_common_dates")
	}

	trin := series[model.SeriesTrin]
	rows := make([]model.BreadthRow, 0, len(dates))
	for _, date := range dates {
		row := model.BreadthRow{
			Date:     date,
			Advances: parse.IntPtr(series[model.SeriesAdvances][date]),
			Declines: parse.IntPtr(series[model.SeriesDeclines][date]),
			NewHighs: parse.IntPtr(series[model.SeriesNewHighs][date]),
			NewLows:  parse.IntPtr(series[model.SeriesNewLows][date]),
		}
		if v, ok := trin[date]; ok {
			row.Trin = parse.NumberPtr(v)
		}
		if row.Advances != nil && row.Declines != nil {
			issues := *row.Advances + *row.Declines
			net := *row.Advances - *row.Declines
			row.IssuesTraded = &issues
			row.NetAdvances = &net
		}

		base := calculator.EvaluateBaseSignal(row.NewHighs, row.NewLows, row.IssuesTraded, row.Advances, row.Declines)
		row.BaseSignal = base.Signal
		row.ThresholdCount = base.ThresholdCount
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows, nil
}

// ApplyCutoff keeps rows dated on or after cutoff (YYYY-MM-DD).
func ApplyCutoff(rows []model.BreadthRow, cutoff string) ([]model.BreadthRow, error) {
	kept := make([]model.BreadthRow, 0, len(rows))
	for _, r := range rows {
		if r.Date >= cutoff {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return nil, model.EmptyResult("no_rows_after_cutoff")
	}
	return kept, nil
}

func commonDates(series model.SeriesSet) []string {
	first := series[model.RequiredSeries[0]]
	var dates []string
	for date := range first {
		if !parse.IsDate(date) {
			continue
		}
		inAll := true
		for _, key := range model.RequiredSeries[1:] {
			if _, ok := series[key][date]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates
}
