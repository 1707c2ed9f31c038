package collector

import (
	"context"

	"BreadthSentinel/internal/model"
)

// BreadthSource supplies one daily breadth series (advances, declines, new highs,
// new lows or TRIN) as date/value pairs.
type BreadthSource interface {
	FetchSeries(ctx context.Context, symbol string, maxRecords int) ([]model.DailyValue, error)
	Name() string
}

// IndexSource supplies daily index closes used for trend confirmation.
type IndexSource interface {
	FetchCloses(ctx context.Context, symbol string, days int) ([]model.DailyValue, error)
	Name() string
}
