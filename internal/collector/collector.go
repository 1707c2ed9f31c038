package collector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"BreadthSentinel/internal/model"
	"BreadthSentinel/internal/parse"
)

// MockFetcher returns controllable fixed data for development and testing.
// It serves both breadth series (keyed by symbol) and index closes.
type MockFetcher struct {
	Series map[string][]model.DailyValue
	Index  []model.DailyValue
	Errs   map[string]error

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, symbol string, _ int) ([]model.DailyValue, error) {
	m.record(symbol)
	if err := m.Errs[symbol]; err != nil {
		return nil, err
	}
	return m.Series[symbol], nil
}

func (m *MockFetcher) FetchCloses(_ context.Context, symbol string, _ int) ([]model.DailyValue, error) {
	m.record(symbol)
	if err := m.Errs[symbol]; err != nil {
		return nil, err
	}
	return m.Index, nil
}

// Calls returns the symbols requested so far.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockFetcher) record(symbol string) {
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()
}

// DefaultSymbols are the NYSE breadth tickers per series.
var DefaultSymbols = map[model.SeriesKey]string{
	model.SeriesAdvances: "ADVN",
	model.SeriesDeclines: "DECN",
	model.SeriesNewHighs: "NYHGH",
	model.SeriesNewLows:  "NYLOW",
	model.SeriesTrin:     "TRIN",
}

// IndexMarginDays extends the index fetch so the 50-session trend comparison
// is defined from the first day of the lookback window.
const IndexMarginDays = 90

// Collector fetches every breadth series plus the trend index for one run.
type Collector struct {
	Breadth     BreadthSource
	Index       IndexSource
	Symbols     map[model.SeriesKey]string
	IndexSymbol string
	MaxRecords  int
}

// NewCollector creates a Collector with default symbols and record limits.
func NewCollector(breadth BreadthSource, index IndexSource, indexSymbol string) *Collector {
	return &Collector{
		Breadth:     breadth,
		Index:       index,
		Symbols:     DefaultSymbols,
		IndexSymbol: indexSymbol,
		MaxRecords:  300,
	}
}

// Collect fetches all series concurrently. An empty required series fails the run
// with a data-unavailable error; a missing TRIN series or a failed index fetch only
// degrade the classification and are logged.
func (c *Collector) Collect(ctx context.Context, lookbackDays int) (*model.RawInputs, error) {
	records := c.MaxRecords
	if records < lookbackDays {
		records = lookbackDays
	}
	indexDays := lookbackDays + IndexMarginDays

	fetched := make([][]model.DailyValue, len(model.AllSeries))
	var index []model.DailyValue

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range model.AllSeries {
		i, key := i, key
		symbol := c.symbol(key)
		g.Go(func() error {
			values, err := c.Breadth.FetchSeries(gctx, symbol, records)
			if err != nil && key == model.SeriesTrin {
				log.Printf("[WARN] %s (%s) fetch failed: %v, lite checks run without it", key, symbol, err)
				return nil
			}
			if err != nil {
				return fmt.Errorf("fetch %s (%s): %w", key, symbol, err)
			}
			fetched[i] = values
			return nil
		})
	}
	if c.Index != nil && c.IndexSymbol != "" {
		g.Go(func() error {
			values, err := c.Index.FetchCloses(gctx, c.IndexSymbol, indexDays)
			if err != nil {
				log.Printf("[WARN] Index %s fetch failed: %v, trend confirmation unavailable", c.IndexSymbol, err)
				return nil
			}
			index = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := make(model.SeriesSet, len(model.AllSeries))
	for i, key := range model.AllSeries {
		byDate := toDateMap(fetched[i])
		if len(byDate) == 0 {
			if key == model.SeriesTrin {
				log.Printf("[WARN] No %s data from %s, lite checks run without it", key, c.Breadth.Name())
			} else {
				return nil, model.DataUnavailable("no_data_" + string(key))
			}
		}
		set[key] = byDate
	}
	if len(index) == 0 {
		log.Printf("[WARN] No closes for index %s, strict mode disabled", c.IndexSymbol)
	}

	return &model.RawInputs{
		Series:    set,
		Index:     index,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (c *Collector) symbol(key model.SeriesKey) string {
	if s, ok := c.Symbols[key]; ok && s != "" {
		return s
	}
	return DefaultSymbols[key]
}

// toDateMap keeps valid dates with finite values; later duplicates win.
func toDateMap(values []model.DailyValue) map[string]float64 {
	out := make(map[string]float64, len(values))
	for _, v := range values {
		if !parse.IsDate(v.Date) {
			continue
		}
		if _, ok := parse.ParseNumber(v.Value); !ok {
			continue
		}
		out[v.Date] = v.Value
	}
	return out
}
