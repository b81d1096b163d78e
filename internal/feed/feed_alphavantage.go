package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"tascope/internal/market"
)

type alphaVantageResponse struct {
	ErrorMessage string                     `json:"Error Message"`
	Note         string                     `json:"Note"`
	TimeSeries   map[string]alphaVantageBar `json:"Time Series (Daily)"`
	MetaData     map[string]string          `json:"Meta Data"`
}

// Alpha Vantage serves every numeric field as a string.
type alphaVantageBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

func (f *Feed) fetchAlphaVantage(ctx context.Context, symbol string, p Period) (*market.Series, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("alphavantage requires an API key")
	}
	endpoint := fmt.Sprintf("%s/query", f.alphaVantageBaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("outputsize", "full")
	q.Set("apikey", f.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload alphaVantageResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.ErrorMessage != "" {
		return nil, fmt.Errorf("alphavantage error: %s", payload.ErrorMessage)
	}
	if payload.Note != "" {
		return nil, fmt.Errorf("alphavantage throttled: %s", payload.Note)
	}
	if len(payload.TimeSeries) == 0 {
		return nil, fmt.Errorf("no time series returned for %s", symbol)
	}

	series := &market.Series{Symbol: symbol, Interval: "1d"}
	for date, raw := range payload.TimeSeries {
		ts, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		bar, err := parseAlphaVantageBar(symbol, ts, raw)
		if err != nil {
			return nil, err
		}
		series.Bars = append(series.Bars, bar)
	}
	sort.Slice(series.Bars, func(i, j int) bool { return series.Bars[i].Ts.Before(series.Bars[j].Ts) })
	series.Trim(p.Start(time.Now().UTC()))
	if series.Len() == 0 {
		return nil, fmt.Errorf("no bars inside period %s for %s", p.Label, symbol)
	}
	return series, nil
}

func parseAlphaVantageBar(symbol string, ts time.Time, raw alphaVantageBar) (market.Bar, error) {
	parse := func(field, v string) (float64, error) {
		out, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %s %q: %w", field, v, err)
		}
		return out, nil
	}
	o, err := parse("open", raw.Open)
	if err != nil {
		return market.Bar{}, err
	}
	h, err := parse("high", raw.High)
	if err != nil {
		return market.Bar{}, err
	}
	l, err := parse("low", raw.Low)
	if err != nil {
		return market.Bar{}, err
	}
	c, err := parse("close", raw.Close)
	if err != nil {
		return market.Bar{}, err
	}
	v, err := parse("volume", raw.Volume)
	if err != nil {
		return market.Bar{}, err
	}
	return market.Bar{Symbol: symbol, Ts: ts, Open: o, High: h, Low: l, Close: c, Volume: v}, nil
}
