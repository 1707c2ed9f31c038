package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"BreadthSentinel/internal/model"
	"BreadthSentinel/internal/parse"
)

// RESTFetcher reads end-of-day bars from a generic REST API. Breadth statistics are
// published as bars whose close is the day's count.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the API.
type restBar struct {
	Timestamp int64       `json:"timestamp"`
	Date      string      `json:"date"`
	Close     json.Number `json:"close"`
}

func (f *RESTFetcher) FetchSeries(ctx context.Context, symbol string, maxRecords int) ([]model.DailyValue, error) {
	if maxRecords < 10 {
		maxRecords = 10
	}
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(symbol), maxRecords)
	return f.fetchBars(ctx, endpoint)
}

func (f *RESTFetcher) FetchCloses(ctx context.Context, symbol string, days int) ([]model.DailyValue, error) {
	return f.FetchSeries(ctx, symbol, days)
}

func (f *RESTFetcher) fetchBars(ctx context.Context, endpoint string) ([]model.DailyValue, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, errorBody(body))
	}
	var bars []restBar
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&bars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}

	values := make([]model.DailyValue, 0, len(bars))
	for _, b := range bars {
		date := b.Date
		if date == "" && b.Timestamp > 0 {
			date = time.Unix(b.Timestamp, 0).UTC().Format(parse.DateLayout)
		}
		if !parse.IsDate(date) {
			continue
		}
		v, ok := parse.ParseNumber(b.Close)
		if !ok {
			continue
		}
		values = append(values, model.DailyValue{Date: date, Value: v})
	}
	// Ensure chronological order
	sort.SliceStable(values, func(i, j int) bool { return values[i].Date < values[j].Date })
	return values, nil
}

// maxErrorBody caps how much of a failed response is quoted in an error.
const maxErrorBody = 256

func errorBody(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return strings.ToValidUTF8(strings.TrimSpace(string(b)), "")
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
