package indicator

import (
	"testing"
	"time"

	"tascope/internal/market"
)

func TestVWAPWeightsByVolume(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := []market.Bar{
		{Symbol: "AAPL", Ts: start, High: 10, Low: 10, Close: 10, Volume: 100},
		{Symbol: "AAPL", Ts: start.AddDate(0, 0, 1), High: 20, Low: 20, Close: 20, Volume: 300},
	}
	out := VWAP(bars)
	if out[0] != 10 {
		t.Fatalf("expected first VWAP 10, got %.4f", out[0])
	}
	// (10*100 + 20*300) / 400 = 17.5
	if out[1] != 17.5 {
		t.Fatalf("expected 17.5, got %.4f", out[1])
	}
}

func TestVWAPZeroVolumeCarriesForward(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := []market.Bar{
		{Symbol: "AAPL", Ts: start, High: 12, Low: 8, Close: 10, Volume: 50},
		{Symbol: "AAPL", Ts: start.AddDate(0, 0, 1), High: 30, Low: 30, Close: 30, Volume: 0},
	}
	out := VWAP(bars)
	if out[1] != out[0] {
		t.Fatalf("zero-volume bar should not move VWAP: %.4f vs %.4f", out[1], out[0])
	}
}
