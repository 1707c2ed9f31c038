package strategy

import (
	"time"

	"BreadthSentinel/internal/calculator"
	"BreadthSentinel/internal/model"
)

type day struct {
	adv, dec, highs, lows int
}

// quiet is a day with strong breadth and no base signal (highs below threshold 70).
var quiet = day{adv: 1500, dec: 1000, highs: 10, lows: 200}

// omen passes the base test: threshold ceil(2500*0.028)=70, highs/lows 80.
var omen = day{adv: 1500, dec: 1000, highs: 80, lows: 80}

func tradingDays(start time.Time, n int) []string {
	out := make([]string, 0, n)
	d := start
	for len(out) < n {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			out = append(out, d.Format("2006-01-02"))
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}

var rowStart = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func seriesFor(days []day) (model.SeriesSet, []string) {
	dates := tradingDays(rowStart, len(days))
	set := model.SeriesSet{
		model.SeriesAdvances: {},
		model.SeriesDeclines: {},
		model.SeriesNewHighs: {},
		model.SeriesNewLows:  {},
	}
	for i, d := range days {
		set[model.SeriesAdvances][dates[i]] = float64(d.adv)
		set[model.SeriesDeclines][dates[i]] = float64(d.dec)
		set[model.SeriesNewHighs][dates[i]] = float64(d.highs)
		set[model.SeriesNewLows][dates[i]] = float64(d.lows)
	}
	return set, dates
}

func repeat(d day, n int) []day {
	out := make([]day, n)
	for i := range out {
		out[i] = d
	}
	return out
}

// indexCovering returns an index series starting 80 sessions before rowStart and
// running through the last row, rising (step > 0) or falling (step < 0).
func indexCovering(rowDates []string, step float64) calculator.IndexSeries {
	start := rowStart.AddDate(0, 0, -120)
	all := tradingDays(start, 400)
	last := rowDates[len(rowDates)-1]
	var vals []model.DailyValue
	for i, d := range all {
		if d > last {
			break
		}
		vals = append(vals, model.DailyValue{Date: d, Value: 10000 + step*float64(i)})
	}
	return calculator.NewIndexSeries(vals)
}

func buildAndClassify(days []day, index func([]string) calculator.IndexSeries) []model.BreadthRow {
	set, dates := seriesFor(days)
	rows, err := BuildRows(set)
	if err != nil {
		panic(err)
	}
	return Classify(rows, index(dates))
}

func risingIndex(dates []string) calculator.IndexSeries  { return indexCovering(dates, 5) }
func fallingIndex(dates []string) calculator.IndexSeries { return indexCovering(dates, -5) }
func noIndex([]string) calculator.IndexSeries            { return calculator.IndexSeries{} }
