package strategy

import (
	"strings"

	"BreadthSentinel/internal/model"
)

// Classifier windows.
const (
	ClusterWindow     = 30
	ClusterMinSignals = 2
	StrictMinHistory  = 40
	LiteTrinBearish   = 1.0
)

// clusterSignalCount counts base signals in the trailing window ending at i, inclusive.
func clusterSignalCount(rows []model.BreadthRow, i int) int {
	start := i - (ClusterWindow - 1)
	if start < 0 {
		start = 0
	}
	count := 0
	for _, r := range rows[start : i+1] {
		if r.BaseSignal {
			count++
		}
	}
	return count
}

// liteBreadthNegative is true when the day's breadth leans bearish: more decliners
// than advancers, or a TRIN above 1.
func liteBreadthNegative(row model.BreadthRow) bool {
	if row.NetAdvances != nil && *row.NetAdvances < 0 {
		return true
	}
	return row.Trin != nil && *row.Trin > LiteTrinBearish
}

// IsLampOn reports whether a stored state should light the warning lamp.
func IsLampOn(state string, triggered bool) bool {
	if triggered {
		return true
	}
	s := strings.ToUpper(state)
	return strings.Contains(s, "WATCH") || strings.Contains(s, "TRIGGER")
}
