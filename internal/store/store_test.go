package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tascope/internal/market"
)

func testSeries(symbol string, n int) *market.Series {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := &market.Series{Symbol: symbol, Interval: "1d"}
	for i := 0; i < n; i++ {
		c := 100 + float64(i)
		series.Bars = append(series.Bars, market.Bar{
			Symbol: symbol,
			Ts:     start.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		})
	}
	return series
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "bars.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, testSeries("AAPL", 5), time.Time{}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, err := s.Get(ctx, "AAPL", "1d", time.Time{}, time.Now().UTC())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Len() != 5 {
		t.Fatalf("expected 5 bars, got %d", got.Len())
	}
	if got.Bars[0].Close != 100 || got.Bars[4].Close != 104 {
		t.Fatalf("unexpected closes: %.2f %.2f", got.Bars[0].Close, got.Bars[4].Close)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("retrieved series invalid: %v", err)
	}
}

func TestPutUpsertsExistingBar(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	series := testSeries("AAPL", 1)
	if err := s.Put(ctx, series, time.Time{}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	series.Bars[0].Close = 250
	if err := s.Put(ctx, series, time.Time{}); err != nil {
		t.Fatalf("second Put returned error: %v", err)
	}

	got, err := s.Get(ctx, "AAPL", "1d", time.Time{}, time.Now().UTC())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("expected 1 bar after upsert, got %d", got.Len())
	}
	if got.Bars[0].Close != 250 {
		t.Fatalf("expected upserted close 250, got %.2f", got.Bars[0].Close)
	}
}

func TestGetFiltersRange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, testSeries("AAPL", 10), time.Time{}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	from := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	got, err := s.Get(ctx, "AAPL", "1d", from, to)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Len() != 4 {
		t.Fatalf("expected 4 bars in range, got %d", got.Len())
	}
}

func TestCoverage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	start, fetched, err := s.Coverage(ctx, "AAPL", "1d")
	if err != nil {
		t.Fatalf("Coverage returned error: %v", err)
	}
	if !start.IsZero() || !fetched.IsZero() {
		t.Fatalf("expected zero coverage for empty cache, got %s / %s", start, fetched)
	}

	narrow := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := s.Put(ctx, testSeries("AAPL", 2), narrow); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	start, fetched, err = s.Coverage(ctx, "AAPL", "1d")
	if err != nil {
		t.Fatalf("Coverage returned error: %v", err)
	}
	if !start.Equal(narrow) {
		t.Fatalf("expected range start %s, got %s", narrow, start)
	}
	if time.Since(fetched) > time.Minute {
		t.Fatalf("fetched_at not recent: %s", fetched)
	}

	// A wider fetch extends coverage.
	wide := narrow.AddDate(-2, 0, 0)
	if err := s.Put(ctx, testSeries("AAPL", 2), wide); err != nil {
		t.Fatalf("second Put returned error: %v", err)
	}
	start, _, err = s.Coverage(ctx, "AAPL", "1d")
	if err != nil {
		t.Fatalf("Coverage returned error: %v", err)
	}
	if !start.Equal(wide) {
		t.Fatalf("expected widened range start %s, got %s", wide, start)
	}

	// A narrower fetch afterwards must not shrink it.
	if err := s.Put(ctx, testSeries("AAPL", 2), narrow); err != nil {
		t.Fatalf("third Put returned error: %v", err)
	}
	start, _, err = s.Coverage(ctx, "AAPL", "1d")
	if err != nil {
		t.Fatalf("Coverage returned error: %v", err)
	}
	if !start.Equal(wide) {
		t.Fatalf("expected coverage to stay at %s, got %s", wide, start)
	}

	n, err := s.Count(ctx, "AAPL", "1d")
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 cached bars, got %d", n)
	}
}

func TestCoverageUnboundedFetch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, testSeries("AAPL", 2), time.Time{}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	start, fetched, err := s.Coverage(ctx, "AAPL", "1d")
	if err != nil {
		t.Fatalf("Coverage returned error: %v", err)
	}
	if !start.IsZero() {
		t.Fatalf("expected unbounded range start, got %s", start)
	}
	if fetched.IsZero() {
		t.Fatalf("expected recorded fetch time")
	}
}
