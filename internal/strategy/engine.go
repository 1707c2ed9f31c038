package strategy

import (
	"BreadthSentinel/internal/calculator"
	"BreadthSentinel/internal/model"
)

// Classify annotates every row with oscillator, trend, cluster count and the
// resulting state. Rows must be in ascending date order. Each row depends only on
// rows at or before it, so replaying the same input always gives the same states.
func Classify(rows []model.BreadthRow, index calculator.IndexSeries) []model.BreadthRow {
	netSeries := make([]float64, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.NetAdvances != nil {
			netSeries = append(netSeries, float64(*row.NetAdvances))
		}

		row.Oscillator = nil
		if osc, err := calculator.CalculateOscillator(netSeries); err == nil {
			row.Oscillator = &osc
		}

		row.TrendCondition = nil
		if up, ok := calculator.TrendCondition(index, row.Date, calculator.TrendLookback); ok {
			row.TrendCondition = &up
		}

		row.ClusterSignalCount = clusterSignalCount(rows, i)
		evaluate(row, i+1, len(netSeries))
	}
	return rows
}

// evaluate applies the strict/lite decision table to a row whose diagnostics are set.
// historyLen is the row's 1-based position; netLen the number of net-advances values so far.
func evaluate(row *model.BreadthRow, historyLen, netLen int) {
	cluster := row.ClusterSignalCount >= ClusterMinSignals
	oscNegative := row.Oscillator != nil && *row.Oscillator < 0
	trendKnown := row.TrendCondition != nil
	trendUp := trendKnown && *row.TrendCondition

	strictReady := historyLen >= StrictMinHistory && netLen >= StrictMinHistory &&
		row.Oscillator != nil && trendKnown
	strictTriggered := strictReady && cluster && oscNegative && trendUp

	// An unknown trend does not block the lite check; only an explicit downtrend does.
	trendNotDown := !trendKnown || trendUp
	liteTriggered := row.BaseSignal && trendNotDown && liteBreadthNegative(*row)

	if strictReady {
		row.Mode = model.ModeStrict
		row.Triggered = strictTriggered
		switch {
		case strictTriggered:
			row.State, row.Risk = model.StateTriggered, model.RiskHigh
		case row.BaseSignal && trendUp:
			row.State, row.Risk = model.StateWatchStrictInitial, model.RiskMid
		case cluster && trendUp:
			row.State, row.Risk = model.StateWatchStrictCluster, model.RiskMid
		default:
			row.State, row.Risk = model.StateNoSignal, model.RiskLow
		}
	} else {
		row.Mode = model.ModeLite
		row.Triggered = false
		switch {
		case liteTriggered:
			row.State, row.Risk = model.StateWatchLite, model.RiskMid
		case row.BaseSignal:
			row.State, row.Risk = model.StateWatchLiteBase, model.RiskMid
		default:
			row.State, row.Risk = model.StateNoSignal, model.RiskLow
		}
	}
	row.LampOn = IsLampOn(string(row.State), row.Triggered)
}
