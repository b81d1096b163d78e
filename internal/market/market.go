// Package market standardizes payloads shared between data ingestion and analysis layers.
package market

import (
	"errors"
	"time"
)

// Bar models a single OHLCV candle for a symbol.
type Bar struct {
	Symbol string    `json:"symbol"`
	Ts     time.Time `json:"ts"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series holds ordered bars for one symbol at one interval.
type Series struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Bars     []Bar  `json:"bars"`
}

// Alert expresses a rule firing against a refreshed analysis.
type Alert struct {
	Symbol string    `json:"symbol"`
	Rule   string    `json:"rule"`
	Score  float64   `json:"score"` // positive bullish bias, negative bearish
	Reason string    `json:"reason"`
	Ts     time.Time `json:"ts"`
}

// ErrEmptySeries is returned by accessors that need at least one bar.
var ErrEmptySeries = errors.New("series has no bars")

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Last returns the most recent bar.
func (s *Series) Last() (Bar, error) {
	if len(s.Bars) == 0 {
		return Bar{}, ErrEmptySeries
	}
	return s.Bars[len(s.Bars)-1], nil
}

// Prev returns the bar before the most recent one.
func (s *Series) Prev() (Bar, error) {
	if len(s.Bars) < 2 {
		return Bar{}, ErrEmptySeries
	}
	return s.Bars[len(s.Bars)-2], nil
}

// Closes extracts closing prices in bar order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Validate checks that bars are strictly time-ordered with positive prices.
func (s *Series) Validate() error {
	var prev time.Time
	for _, b := range s.Bars {
		if !b.Ts.After(prev) {
			return errors.New("bars out of order")
		}
		if b.Close <= 0 || b.Open <= 0 || b.High <= 0 || b.Low <= 0 {
			return errors.New("non-positive price")
		}
		if b.High < b.Low {
			return errors.New("high below low")
		}
		prev = b.Ts
	}
	return nil
}

// Trim drops bars before the cutoff, keeping order. A zero cutoff keeps
// everything.
func (s *Series) Trim(cutoff time.Time) {
	if cutoff.IsZero() {
		return
	}
	idx := len(s.Bars)
	for i, b := range s.Bars {
		if !b.Ts.Before(cutoff) {
			idx = i
			break
		}
	}
	s.Bars = s.Bars[idx:]
}
