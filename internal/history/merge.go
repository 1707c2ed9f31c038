package history

import (
	"math"
	"sort"
	"strings"

	"BreadthSentinel/internal/model"
	"BreadthSentinel/internal/parse"
)

// Normalize trims text fields, drops non-finite numbers and validates the date.
// ok is false when the record has no valid date.
func Normalize(rec model.HistoryRecord) (model.HistoryRecord, bool) {
	rec.Date = strings.TrimSpace(rec.Date)
	if !parse.IsDate(rec.Date) {
		return model.HistoryRecord{}, false
	}
	rec.State = trimmed(rec.State)
	rec.Mode = trimmed(rec.Mode)
	rec.Risk = trimmed(rec.Risk)
	if rec.Trin != nil && (math.IsNaN(*rec.Trin) || math.IsInf(*rec.Trin, 0)) {
		rec.Trin = nil
	}
	return rec, true
}

// Upsert inserts candidate into history (kept in ascending date order) or merges it
// into the record already stored for that date:
//   - an authoritative record is never changed by a derived candidate;
//   - otherwise every non-nil candidate field overwrites the stored one, and the
//     merged record stays derived only if both were derived.
//
// Candidates without a valid date are ignored.
func Upsert(history []model.HistoryRecord, candidate model.HistoryRecord) []model.HistoryRecord {
	clean, ok := Normalize(candidate)
	if !ok {
		return history
	}

	for i := range history {
		if history[i].Date != clean.Date {
			continue
		}
		prev := history[i]
		if !prev.Derived && clean.Derived {
			return history
		}
		history[i] = merge(prev, clean)
		return history
	}

	pos := sort.Search(len(history), func(i int) bool { return history[i].Date > clean.Date })
	history = append(history, model.HistoryRecord{})
	copy(history[pos+1:], history[pos:])
	history[pos] = clean
	return history
}

// Find returns the record stored for date.
func Find(history []model.HistoryRecord, date string) (model.HistoryRecord, bool) {
	for _, rec := range history {
		if rec.Date == date {
			return rec, true
		}
	}
	return model.HistoryRecord{}, false
}

func merge(prev, next model.HistoryRecord) model.HistoryRecord {
	out := prev
	out.Advances = pick(prev.Advances, next.Advances)
	out.Declines = pick(prev.Declines, next.Declines)
	out.NetAdvances = pick(prev.NetAdvances, next.NetAdvances)
	out.NewHighs = pick(prev.NewHighs, next.NewHighs)
	out.NewLows = pick(prev.NewLows, next.NewLows)
	out.IssuesTraded = pick(prev.IssuesTraded, next.IssuesTraded)
	out.Trin = pick(prev.Trin, next.Trin)
	out.BaseSignal = pick(prev.BaseSignal, next.BaseSignal)
	out.State = pick(prev.State, next.State)
	out.Mode = pick(prev.Mode, next.Mode)
	out.Risk = pick(prev.Risk, next.Risk)
	out.Triggered = pick(prev.Triggered, next.Triggered)
	out.LampOn = pick(prev.LampOn, next.LampOn)
	out.Derived = prev.Derived && next.Derived
	return out
}

func pick[T any](prev, next *T) *T {
	if next != nil {
		return next
	}
	return prev
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
