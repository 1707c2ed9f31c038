package calculator

import (
	"sort"

	"BreadthSentinel/internal/model"
)

// TrendLookback is the number of index sessions compared for trend confirmation.
const TrendLookback = 50

// IndexSeries is a date-ascending index close series.
type IndexSeries struct {
	Dates  []string
	Closes []float64
}

// NewIndexSeries sorts observations by date and keeps the last close per date.
func NewIndexSeries(values []model.DailyValue) IndexSeries {
	sorted := make([]model.DailyValue, len(values))
	copy(sorted, values)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	s := IndexSeries{}
	for _, v := range sorted {
		if n := len(s.Dates); n > 0 && s.Dates[n-1] == v.Date {
			s.Closes[n-1] = v.Value
			continue
		}
		s.Dates = append(s.Dates, v.Date)
		s.Closes = append(s.Closes, v.Value)
	}
	return s
}

// Len returns the number of sessions.
func (s IndexSeries) Len() int { return len(s.Dates) }

// IndexOf returns the position of date, or of the latest session before it.
func (s IndexSeries) IndexOf(date string) (int, bool) {
	// first position whose date is strictly after the target, minus one
	idx := sort.Search(len(s.Dates), func(i int) bool { return s.Dates[i] > date }) - 1
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

// TrendCondition reports whether the close on date (or the prior session) is above
// the close lookback sessions earlier. ok is false when there is not enough history.
func TrendCondition(s IndexSeries, date string, lookback int) (up bool, ok bool) {
	idx, found := s.IndexOf(date)
	if !found || idx < lookback || idx >= len(s.Closes) {
		return false, false
	}
	return s.Closes[idx] > s.Closes[idx-lookback], true
}
