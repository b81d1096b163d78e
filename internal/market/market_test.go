package market

import (
	"testing"
	"time"
)

func daily(symbol string, closes ...float64) Series {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]Bar, len(closes))
	for i, c := range closes {
		bars[i] = Bar{
			Symbol: symbol,
			Ts:     start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	return Series{Symbol: symbol, Interval: "1d", Bars: bars}
}

func TestSeriesAccessors(t *testing.T) {
	s := daily("AAPL", 100, 101, 102)
	last, err := s.Last()
	if err != nil {
		t.Fatalf("Last returned error: %v", err)
	}
	if last.Close != 102 {
		t.Fatalf("expected last close 102, got %.2f", last.Close)
	}
	prev, err := s.Prev()
	if err != nil {
		t.Fatalf("Prev returned error: %v", err)
	}
	if prev.Close != 101 {
		t.Fatalf("expected prev close 101, got %.2f", prev.Close)
	}
	closes := s.Closes()
	if len(closes) != 3 || closes[0] != 100 {
		t.Fatalf("unexpected closes: %+v", closes)
	}
}

func TestSeriesEmpty(t *testing.T) {
	var s Series
	if _, err := s.Last(); err == nil {
		t.Fatalf("expected error for empty series")
	}
	if _, err := s.Prev(); err == nil {
		t.Fatalf("expected error for single-element Prev")
	}
}

func TestValidateRejectsDisorder(t *testing.T) {
	s := daily("AAPL", 100, 101)
	s.Bars[1].Ts = s.Bars[0].Ts
	if err := s.Validate(); err == nil {
		t.Fatalf("expected out-of-order error")
	}

	s = daily("AAPL", 100, 101)
	s.Bars[0].Close = -1
	if err := s.Validate(); err == nil {
		t.Fatalf("expected non-positive price error")
	}
}

func TestTrimDropsOldBars(t *testing.T) {
	s := daily("AAPL", 100, 101, 102, 103)
	cutoff := s.Bars[1].Ts
	s.Trim(cutoff)
	if s.Len() != 3 {
		t.Fatalf("expected 3 bars after trim, got %d", s.Len())
	}
	if s.Bars[0].Close != 101 {
		t.Fatalf("expected first remaining close 101, got %.2f", s.Bars[0].Close)
	}

	s.Trim(time.Time{})
	if s.Len() != 3 {
		t.Fatalf("expected zero cutoff to keep all bars, got %d", s.Len())
	}

	s.Trim(s.Bars[2].Ts.AddDate(0, 0, 1))
	if s.Len() != 0 {
		t.Fatalf("expected future cutoff to drop all bars, got %d", s.Len())
	}
}
