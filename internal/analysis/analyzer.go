package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"tascope/internal/config"
	"tascope/internal/feed"
	"tascope/internal/indicator"
	"tascope/internal/market"
	"tascope/internal/metrics"
	"tascope/internal/store"
)

// ErrInsufficientData is returned when a series is too short for the
// configured indicator windows.
var ErrInsufficientData = errors.New("insufficient history for analysis")

// Source abstracts the history provider so tests can inject fixed series.
type Source interface {
	History(ctx context.Context, symbol, period string) (*market.Series, error)
}

// Analyzer binds a history source, an optional bar cache, and indicator
// parameters.
type Analyzer struct {
	src    Source
	cache  *store.Store
	ttl    time.Duration
	params config.Indicators
	log    zerolog.Logger
}

// Option configures Analyzer construction.
type Option func(*Analyzer)

// WithCache routes history lookups through the SQLite bar cache with the
// given freshness TTL.
func WithCache(cache *store.Store, ttl time.Duration) Option {
	return func(a *Analyzer) {
		a.cache = cache
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// New constructs an analyzer; zero-valued indicator params fall back to the
// conventional 20/50/200, BB(20,2), RSI(14), MACD(12,26,9) set.
func New(src Source, params config.Indicators, log zerolog.Logger, opts ...Option) *Analyzer {
	if len(params.SMALengths) == 0 {
		params.SMALengths = []int{20, 50, 200}
	}
	if params.BBLength <= 0 {
		params.BBLength = 20
	}
	if params.BBMult <= 0 {
		params.BBMult = 2
	}
	if params.RSILength <= 0 {
		params.RSILength = 14
	}
	if params.MACDFast <= 0 || params.MACDSlow <= params.MACDFast {
		params.MACDFast, params.MACDSlow = 12, 26
	}
	if params.MACDSignal <= 0 {
		params.MACDSignal = 9
	}
	a := &Analyzer{src: src, params: params, ttl: time.Hour, log: log}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run fetches history for the symbol and computes its technical summary.
func (a *Analyzer) Run(ctx context.Context, symbol, period string) (*Summary, error) {
	series, err := a.History(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	summary, err := a.Summarize(series, period)
	if err != nil {
		return nil, err
	}
	metrics.AnalysesTotal.WithLabelValues(summary.Symbol).Inc()
	return summary, nil
}

// History returns the bar series for the symbol, served from the cache when
// fresh. Cache failures degrade to a direct provider fetch.
func (a *Analyzer) History(ctx context.Context, symbol, period string) (*market.Series, error) {
	if a.cache == nil {
		return a.src.History(ctx, symbol, period)
	}

	p, err := feed.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if cached := a.fromCache(ctx, symbol, p, now); cached != nil {
		metrics.CacheHits.Inc()
		return cached, nil
	}
	metrics.CacheMisses.Inc()

	series, err := a.src.History(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	if err := a.cache.Put(ctx, series, p.Start(now)); err != nil {
		a.log.Warn().Err(err).Str("symbol", symbol).Msg("bar cache write failed")
	}
	return series, nil
}

func (a *Analyzer) fromCache(ctx context.Context, symbol string, p feed.Period, now time.Time) *market.Series {
	covered, fetched, err := a.cache.Coverage(ctx, symbol, "1d")
	if err != nil {
		a.log.Warn().Err(err).Str("symbol", symbol).Msg("bar cache read failed")
		return nil
	}
	if fetched.IsZero() || now.Sub(fetched) > a.ttl {
		return nil
	}
	start := p.Start(now)
	// A fetch over a narrower window cannot serve a wider request.
	if !covered.IsZero() && (start.IsZero() || covered.After(start)) {
		return nil
	}
	series, err := a.cache.Get(ctx, symbol, "1d", start, now)
	if err != nil {
		a.log.Warn().Err(err).Str("symbol", symbol).Msg("bar cache read failed")
		return nil
	}
	if series.Len() == 0 {
		return nil
	}
	return series
}

// Summarize computes the full indicator set over the series and reduces it to
// a Summary for the latest bar.
func (a *Analyzer) Summarize(series *market.Series, period string) (*Summary, error) {
	if series == nil || series.Len() < a.minBars() {
		return nil, fmt.Errorf("%w: %s needs %d bars", ErrInsufficientData, seriesName(series), a.minBars())
	}
	closes := series.Closes()
	last := len(closes) - 1
	prev := last - 1

	bands := indicator.Bollinger(closes, a.params.BBLength, a.params.BBMult)
	rsi := indicator.RSI(closes, a.params.RSILength)
	macd := indicator.MACD(closes, a.params.MACDFast, a.params.MACDSlow, a.params.MACDSignal)
	vwap := indicator.VWAP(series.Bars)

	if math.IsNaN(rsi[last]) || math.IsNaN(macd.Line[last]) || math.IsNaN(macd.Signal[last]) ||
		math.IsNaN(bands.Percent[last]) || math.IsNaN(macd.Histogram[prev]) || math.IsNaN(vwap[last]) {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientData, series.Symbol)
	}

	smas := make(map[int][]float64, len(a.params.SMALengths))
	for _, n := range a.params.SMALengths {
		smas[n] = indicator.SMA(closes, n)
	}

	summary := &Summary{
		Symbol: series.Symbol,
		Date:   series.Bars[last].Ts.Format("2006-01-02"),
		Period: period,
		Price: PriceInfo{
			Close:     closes[last],
			Change:    closes[last] - closes[prev],
			ChangePct: (closes[last] - closes[prev]) / closes[prev] * 100,
		},
		MovingAverages: movingAverages(closes, smas, last, prev),
		Bollinger:      bollingerInfo(closes[last], bands, last),
		RSI:            rsiInfo(rsi[last]),
		MACD:           macdInfo(macd, last, prev),
		VWAP: VWAPInfo{
			Value:       vwap[last],
			PriceVsVWAP: (closes[last] - vwap[last]) / vwap[last] * 100,
		},
	}
	return summary, nil
}

func (a *Analyzer) minBars() int {
	// MACD signal is the last indicator to warm up, and the trend call needs
	// the previous histogram value too.
	return a.params.MACDSlow + a.params.MACDSignal + 1
}

func movingAverages(closes []float64, smas map[int][]float64, last, prev int) MovingAverages {
	out := MovingAverages{PriceVs: make(map[int]float64), Cross: CrossNone}
	for n, sma := range smas {
		if math.IsNaN(sma[last]) {
			continue
		}
		out.PriceVs[n] = (closes[last] - sma[last]) / sma[last] * 100
	}

	sma50, ok50 := smas[50]
	sma200, ok200 := smas[200]
	if !ok50 || !ok200 {
		return out
	}
	if math.IsNaN(sma50[last]) || math.IsNaN(sma200[last]) ||
		math.IsNaN(sma50[prev]) || math.IsNaN(sma200[prev]) {
		return out
	}
	switch {
	case sma50[last] > sma200[last] && sma50[prev] <= sma200[prev]:
		out.Cross = CrossGolden
	case sma50[last] < sma200[last] && sma50[prev] >= sma200[prev]:
		out.Cross = CrossDeath
	}
	return out
}

func bollingerInfo(close float64, bands indicator.Bands, last int) BollingerInfo {
	info := BollingerInfo{Percent: bands.Percent[last], Position: BandBetween}
	switch {
	case close > bands.Upper[last]:
		info.Position = BandUpper
	case close < bands.Lower[last]:
		info.Position = BandLower
	}
	return info
}

func rsiInfo(value float64) RSIInfo {
	info := RSIInfo{Value: value, Signal: RSINeutral}
	switch {
	case value > 70:
		info.Signal = RSIOverbought
	case value < 30:
		info.Signal = RSIOversold
	}
	return info
}

func macdInfo(macd indicator.Convergence, last, prev int) MACDInfo {
	info := MACDInfo{
		Value:     macd.Line[last],
		Signal:    macd.Signal[last],
		Histogram: macd.Histogram[last],
		Trend:     TrendNeutral,
	}
	switch {
	case macd.Line[last] > macd.Signal[last] && macd.Histogram[last] > macd.Histogram[prev]:
		info.Trend = TrendBullish
	case macd.Line[last] < macd.Signal[last] && macd.Histogram[last] < macd.Histogram[prev]:
		info.Trend = TrendBearish
	}
	return info
}

func seriesName(series *market.Series) string {
	if series == nil {
		return "<nil>"
	}
	return series.Symbol
}
