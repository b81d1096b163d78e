package analysis

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tascope/internal/config"
	"tascope/internal/feed"
	"tascope/internal/market"
	"tascope/internal/store"
)

// windowedSource serves the slice of its series inside the requested period,
// the way a real provider would.
type windowedSource struct {
	series *market.Series
	calls  int
}

func (w *windowedSource) History(ctx context.Context, symbol, period string) (*market.Series, error) {
	w.calls++
	p, err := feed.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	out := &market.Series{Symbol: w.series.Symbol, Interval: w.series.Interval}
	out.Bars = append(out.Bars, w.series.Bars...)
	out.Trim(p.Start(time.Now().UTC()))
	return out, nil
}

func TestHistoryServedFromCache(t *testing.T) {
	cache, err := store.Open(filepath.Join(t.TempDir(), "bars.db"))
	if err != nil {
		t.Fatalf("store.Open returned error: %v", err)
	}
	defer cache.Close()

	// Recent bars so the period window includes them.
	closes := trendingCloses(60, 100, 0.3)
	series := seriesFromCloses("AAPL", closes)
	now := time.Now().UTC()
	for i := range series.Bars {
		series.Bars[i].Ts = now.AddDate(0, 0, i-len(series.Bars))
	}

	src := &fixedSource{series: series}
	analyzer := New(src, config.Indicators{}, zerolog.Nop(), WithCache(cache, time.Hour))

	first, err := analyzer.History(context.Background(), "AAPL", "3mo")
	if err != nil {
		t.Fatalf("first History returned error: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected one provider call, got %d", src.calls)
	}

	second, err := analyzer.History(context.Background(), "AAPL", "3mo")
	if err != nil {
		t.Fatalf("second History returned error: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected cache hit, provider called %d times", src.calls)
	}
	if first.Len() != second.Len() {
		t.Fatalf("cache returned different bar count: %d vs %d", first.Len(), second.Len())
	}
}

func TestHistoryWiderPeriodRefetches(t *testing.T) {
	cache, err := store.Open(filepath.Join(t.TempDir(), "bars.db"))
	if err != nil {
		t.Fatalf("store.Open returned error: %v", err)
	}
	defer cache.Close()

	// 500 daily bars ending yesterday.
	series := seriesFromCloses("AAPL", trendingCloses(500, 100, 0.1))
	now := time.Now().UTC()
	for i := range series.Bars {
		series.Bars[i].Ts = now.AddDate(0, 0, i-len(series.Bars))
	}
	src := &windowedSource{series: series}
	analyzer := New(src, config.Indicators{}, zerolog.Nop(), WithCache(cache, time.Hour))

	short, err := analyzer.History(context.Background(), "AAPL", "1mo")
	if err != nil {
		t.Fatalf("1mo History returned error: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected one provider call, got %d", src.calls)
	}

	// The fresh 1mo entry must not satisfy a 2y request.
	long, err := analyzer.History(context.Background(), "AAPL", "2y")
	if err != nil {
		t.Fatalf("2y History returned error: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("expected wider period to hit the provider, calls = %d", src.calls)
	}
	if long.Len() <= short.Len() {
		t.Fatalf("2y history truncated: %d bars vs %d for 1mo", long.Len(), short.Len())
	}

	// The widened coverage now serves the narrow period from cache.
	if _, err := analyzer.History(context.Background(), "AAPL", "1mo"); err != nil {
		t.Fatalf("cached 1mo History returned error: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("expected narrow period served from cache, calls = %d", src.calls)
	}

	// "max" has no start bound, so bounded coverage cannot serve it.
	if _, err := analyzer.History(context.Background(), "AAPL", "max"); err != nil {
		t.Fatalf("max History returned error: %v", err)
	}
	if src.calls != 3 {
		t.Fatalf("expected max period to hit the provider, calls = %d", src.calls)
	}
}

func TestHistoryRefetchesWhenStale(t *testing.T) {
	cache, err := store.Open(filepath.Join(t.TempDir(), "bars.db"))
	if err != nil {
		t.Fatalf("store.Open returned error: %v", err)
	}
	defer cache.Close()

	series := seriesFromCloses("AAPL", trendingCloses(60, 100, 0.3))
	src := &fixedSource{series: series}
	analyzer := New(src, config.Indicators{}, zerolog.Nop(), WithCache(cache, time.Nanosecond))

	if _, err := analyzer.History(context.Background(), "AAPL", "3mo"); err != nil {
		t.Fatalf("first History returned error: %v", err)
	}
	if _, err := analyzer.History(context.Background(), "AAPL", "3mo"); err != nil {
		t.Fatalf("second History returned error: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("expected stale cache to refetch, provider called %d times", src.calls)
	}
}
