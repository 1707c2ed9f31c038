package model

import "time"

// DailyValue is one end-of-day observation of a series (a breadth count or an index close).
type DailyValue struct {
	Date  string // YYYY-MM-DD
	Value float64
}

// SeriesKey names one of the raw breadth series.
type SeriesKey string

const (
	SeriesAdvances SeriesKey = "advances"
	SeriesDeclines SeriesKey = "declines"
	SeriesNewHighs SeriesKey = "new_highs"
	SeriesNewLows  SeriesKey = "new_lows"
	SeriesTrin     SeriesKey = "trin"
)

// RequiredSeries must all be present and non-empty for a run to proceed.
var RequiredSeries = []SeriesKey{SeriesAdvances, SeriesDeclines, SeriesNewHighs, SeriesNewLows}

// AllSeries lists every breadth series in fetch order.
var AllSeries = []SeriesKey{SeriesAdvances, SeriesDeclines, SeriesNewHighs, SeriesNewLows, SeriesTrin}

// SeriesSet maps each series to its date-keyed values.
type SeriesSet map[SeriesKey]map[string]float64

// RawInputs holds everything fetched for one evaluation run.
type RawInputs struct {
	Series    SeriesSet
	Index     []DailyValue
	FetchedAt time.Time
}
