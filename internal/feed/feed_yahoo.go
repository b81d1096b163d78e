package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"tascope/internal/market"
)

type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *yahooChartError   `json:"error"`
	} `json:"chart"`
}

type yahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooChartResult struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []yahooQuote `json:"quote"`
	} `json:"indicators"`
}

// Yahoo emits null for halted/missing rows, hence the pointer slices.
type yahooQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

func (f *Feed) fetchYahoo(ctx context.Context, symbol string, p Period) (*market.Series, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", f.yahooBaseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("range", p.Label)
	q.Set("interval", "1d")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", "tascope/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart error: %s (%s)", payload.Chart.Error.Description, payload.Chart.Error.Code)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data returned")
	}
	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data returned")
	}
	quote := result.Indicators.Quote[0]

	series := &market.Series{Symbol: symbol, Interval: "1d"}
	for i, ts := range result.Timestamp {
		bar, ok := yahooBar(symbol, ts, quote, i)
		if !ok {
			continue
		}
		series.Bars = append(series.Bars, bar)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("no usable bars for %s", symbol)
	}
	return series, nil
}

func yahooBar(symbol string, ts int64, q yahooQuote, i int) (market.Bar, bool) {
	deref := func(s []*float64) (float64, bool) {
		if i >= len(s) || s[i] == nil {
			return 0, false
		}
		return *s[i], true
	}
	o, ok1 := deref(q.Open)
	h, ok2 := deref(q.High)
	l, ok3 := deref(q.Low)
	c, ok4 := deref(q.Close)
	if !ok1 || !ok2 || !ok3 || !ok4 || c <= 0 {
		return market.Bar{}, false
	}
	v, _ := deref(q.Volume)
	return market.Bar{
		Symbol: symbol,
		Ts:     time.Unix(ts, 0).UTC(),
		Open:   o,
		High:   h,
		Low:    l,
		Close:  c,
		Volume: v,
	}, true
}
