package calculator

import (
	"errors"
	"fmt"
)

// Oscillator periods applied to the net-advances series.
const (
	FastPeriod = 19
	SlowPeriod = 39
)

// ErrInsufficientData is returned when a series is shorter than the requested period.
var ErrInsufficientData = errors.New("not enough data")

// CalculateEMA computes an exponential moving average seeded with the first
// element of the series (not an SMA of the first period values), then folding
// every later element with k = 2/(period+1).
func CalculateEMA(series []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(series) < period {
		return 0, fmt.Errorf("ema(%d) over %d values: %w", period, len(series), ErrInsufficientData)
	}
	k := 2.0 / (float64(period) + 1.0)
	ema := series[0]
	for _, v := range series[1:] {
		ema = (v-ema)*k + ema
	}
	return ema, nil
}

// CalculateOscillator returns EMA19 - EMA39 of the net-advances series.
func CalculateOscillator(netSeries []float64) (float64, error) {
	fast, err := CalculateEMA(netSeries, FastPeriod)
	if err != nil {
		return 0, err
	}
	slow, err := CalculateEMA(netSeries, SlowPeriod)
	if err != nil {
		return 0, err
	}
	return fast - slow, nil
}
