// Package feed hosts connectors for historical price providers.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tascope/internal/market"
	"tascope/internal/metrics"
)

const (
	// ProviderStub emits deterministic synthetic bars (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderYahoo fetches daily history from the Yahoo Finance chart API.
	ProviderYahoo = "yahoo"
	// ProviderAlphaVantage fetches daily history from the Alpha Vantage REST API.
	ProviderAlphaVantage = "alphavantage"
)

const (
	defaultRefreshInterval     = 5 * time.Minute
	defaultYahooBaseURL        = "https://query1.finance.yahoo.com"
	defaultAlphaVantageBaseURL = "https://www.alphavantage.co"
	defaultTimeout             = 10 * time.Second
)

// ErrUnknownProvider is returned when the configured provider name is not recognized.
var ErrUnknownProvider = errors.New("unknown provider")

// Feed represents a pluggable history source implementation.
type Feed struct {
	provider            string
	symbols             []string
	period              string
	log                 zerolog.Logger
	client              *http.Client
	refreshInterval     time.Duration
	yahooBaseURL        string
	alphaVantageBaseURL string
	apiKey              string
	mu                  sync.RWMutex
}

// Option configures Feed construction parameters.
type Option func(*Feed)

// WithRefreshInterval overrides the default watch-loop cadence.
func WithRefreshInterval(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.refreshInterval = d
		}
	}
}

// WithYahooBaseURL points the Yahoo provider at a different host (tests use httptest).
func WithYahooBaseURL(baseURL string) Option {
	return func(f *Feed) {
		if baseURL != "" {
			f.yahooBaseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithAlphaVantageConfig injects base URL and API key for Alpha Vantage.
func WithAlphaVantageConfig(baseURL, apiKey string) Option {
	return func(f *Feed) {
		if baseURL != "" {
			f.alphaVantageBaseURL = strings.TrimSuffix(baseURL, "/")
		}
		f.apiKey = apiKey
	}
}

// WithTimeout bounds individual provider HTTP requests.
func WithTimeout(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// NewFeed constructs a feed backed by the requested provider.
func NewFeed(provider string, symbols []string, period string, log zerolog.Logger, opts ...Option) *Feed {
	if provider == "" {
		provider = ProviderStub
	}
	f := &Feed{
		provider:            strings.ToLower(provider),
		period:              period,
		log:                 log,
		client:              &http.Client{Timeout: defaultTimeout},
		refreshInterval:     defaultRefreshInterval,
		yahooBaseURL:        defaultYahooBaseURL,
		alphaVantageBaseURL: defaultAlphaVantageBaseURL,
	}
	f.setSymbols(symbols)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Provider reports the active provider name.
func (f *Feed) Provider() string { return f.provider }

// SetSymbols replaces the tracked symbol list (deduplicated, sorted for determinism).
func (f *Feed) SetSymbols(symbols []string) {
	f.setSymbols(symbols)
}

func (f *Feed) setSymbols(symbols []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	unique := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		unique[sym] = struct{}{}
	}
	f.symbols = f.symbols[:0]
	for sym := range unique {
		f.symbols = append(f.symbols, sym)
	}
	sort.Strings(f.symbols)
}

// Symbols returns a copy of the tracked symbol list.
func (f *Feed) Symbols() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.symbols))
	copy(out, f.symbols)
	return out
}

// History fetches the OHLCV series for one symbol over the requested period.
func (f *Feed) History(ctx context.Context, symbol, period string) (*market.Series, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	var series *market.Series
	switch f.provider {
	case ProviderStub:
		series, err = f.fetchStub(symbol, p)
	case ProviderYahoo:
		series, err = f.fetchYahoo(ctx, symbol, p)
	case ProviderAlphaVantage:
		series, err = f.fetchAlphaVantage(ctx, symbol, p)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, f.provider)
	}
	if err != nil {
		metrics.FetchErrors.WithLabelValues(f.provider).Inc()
		return nil, err
	}
	metrics.BarsFetched.WithLabelValues(f.provider, symbol).Add(float64(series.Len()))
	return series, nil
}

// Watch re-fetches history for every tracked symbol on the refresh interval
// and pushes refreshed series onto the channel until the context is canceled.
func (f *Feed) Watch(ctx context.Context, out chan<- market.Series) error {
	f.refresh(ctx, out)

	ticker := time.NewTicker(f.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f.refresh(ctx, out)
		}
	}
}

func (f *Feed) refresh(ctx context.Context, out chan<- market.Series) {
	for _, sym := range f.Symbols() {
		series, err := f.History(ctx, sym, f.period)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			f.log.Warn().Err(err).Str("symbol", sym).Msg("history fetch failed")
			continue
		}
		select {
		case out <- *series:
		case <-ctx.Done():
			return
		}
	}
}
