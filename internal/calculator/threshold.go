package calculator

import (
	"math"

	"BreadthSentinel/internal/model"
)

// ThresholdRatio is the share of traded issues that new highs and new lows must each reach.
const ThresholdRatio = 0.028

// Threshold returns ceil(issues * 2.8%). The issue count prefers advances+declines
// and falls back to the reported issuesTraded.
func Threshold(issuesTraded, advances, declines *int) (int, bool) {
	base := 0
	switch {
	case advances != nil && declines != nil && *advances+*declines > 0:
		base = *advances + *declines
	case issuesTraded != nil && *issuesTraded > 0:
		base = *issuesTraded
	default:
		return 0, false
	}
	return int(math.Ceil(float64(base) * ThresholdRatio)), true
}

// EvaluateBaseSignal tests the three daily conditions: highs and lows both at or
// above the threshold, and highs no more than twice lows. A missing operand fails
// its condition.
func EvaluateBaseSignal(highs, lows, issuesTraded, advances, declines *int) model.BaseSignal {
	res := model.BaseSignal{}
	threshold, ok := Threshold(issuesTraded, advances, declines)
	if ok {
		res.ThresholdCount = &threshold
	}

	condHighs := ok && highs != nil && *highs >= threshold
	condLows := ok && lows != nil && *lows >= threshold
	condRatio := highs != nil && lows != nil && *lows > 0 && *highs <= *lows*2

	res.Signal = condHighs && condLows && condRatio
	return res
}
