package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := SMA(values, 3)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatalf("expected NaN warmup, got %v", out[:2])
	}
	if !almostEqual(out[2], 2, 1e-9) || !almostEqual(out[4], 4, 1e-9) {
		t.Fatalf("unexpected SMA values: %v", out)
	}
}

func TestSMAShortInput(t *testing.T) {
	out := SMA([]float64{1, 2}, 5)
	for _, v := range out {
		if !math.IsNaN(v) {
			t.Fatalf("expected all NaN for short input, got %v", out)
		}
	}
}

func TestEMASeedsWithSMA(t *testing.T) {
	values := []float64{2, 4, 6, 8, 10}
	out := EMA(values, 3)
	if !almostEqual(out[2], 4, 1e-9) {
		t.Fatalf("expected SMA seed 4, got %.6f", out[2])
	}
	// alpha = 0.5: 0.5*8 + 0.5*4 = 6
	if !almostEqual(out[3], 6, 1e-9) {
		t.Fatalf("expected 6, got %.6f", out[3])
	}
	if !almostEqual(out[4], 8, 1e-9) {
		t.Fatalf("expected 8, got %.6f", out[4])
	}
}

func TestStdevSample(t *testing.T) {
	out := Stdev([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)
	// sample stddev of this classic set is ~2.138
	if !almostEqual(out[7], 2.13809, 1e-4) {
		t.Fatalf("unexpected stdev %.5f", out[7])
	}
}

func TestBollingerBands(t *testing.T) {
	values := make([]float64, 25)
	for i := range values {
		values[i] = 100 + float64(i%5)
	}
	b := Bollinger(values, 20, 2)
	last := len(values) - 1
	if math.IsNaN(b.Middle[last]) || math.IsNaN(b.Upper[last]) || math.IsNaN(b.Lower[last]) {
		t.Fatalf("expected bands after warmup")
	}
	if b.Upper[last] <= b.Middle[last] || b.Middle[last] <= b.Lower[last] {
		t.Fatalf("band ordering violated: %v %v %v", b.Lower[last], b.Middle[last], b.Upper[last])
	}
	if b.Percent[last] < 0 || b.Percent[last] > 1 {
		t.Fatalf("expected %%B inside bands for oscillating input, got %.4f", b.Percent[last])
	}
	if b.Bandwidth[last] <= 0 {
		t.Fatalf("expected positive bandwidth, got %.4f", b.Bandwidth[last])
	}
}

func TestRSIExtremes(t *testing.T) {
	rising := make([]float64, 30)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	out := RSI(rising, 14)
	if out[len(out)-1] != 100 {
		t.Fatalf("all-gains series should pin RSI at 100, got %.2f", out[len(out)-1])
	}

	falling := make([]float64, 30)
	for i := range falling {
		falling[i] = 200 - float64(i)
	}
	out = RSI(falling, 14)
	if out[len(out)-1] != 0 {
		t.Fatalf("all-losses series should pin RSI at 0, got %.2f", out[len(out)-1])
	}
}

func TestRSIWarmup(t *testing.T) {
	out := RSI([]float64{1, 2, 3}, 14)
	for _, v := range out {
		if !math.IsNaN(v) {
			t.Fatalf("expected NaN before warmup, got %v", out)
		}
	}
}

func TestMACDCrossesZeroOnTrendChange(t *testing.T) {
	values := make([]float64, 80)
	for i := range values {
		if i < 40 {
			values[i] = 100 - float64(i)*0.5
		} else {
			values[i] = 80 + float64(i-40)*1.5
		}
	}
	c := MACD(values, 12, 26, 9)
	last := len(values) - 1
	if math.IsNaN(c.Line[last]) || math.IsNaN(c.Signal[last]) {
		t.Fatalf("expected MACD values after warmup")
	}
	if c.Line[last] <= 0 {
		t.Fatalf("expected positive MACD after sustained uptrend, got %.4f", c.Line[last])
	}
	if c.Histogram[last] != c.Line[last]-c.Signal[last] {
		t.Fatalf("histogram must equal line minus signal")
	}
}
