package indicator

import "math"

// Bands holds the Bollinger band set for one series.
type Bands struct {
	Lower     []float64
	Middle    []float64
	Upper     []float64
	Bandwidth []float64 // (upper-lower)/middle * 100
	Percent   []float64 // %B: (close-lower)/(upper-lower)
}

// Bollinger computes Bollinger bands over closes with the supplied window and
// standard deviation multiplier.
func Bollinger(closes []float64, length int, mult float64) Bands {
	n := len(closes)
	b := Bands{
		Lower:     nanSlice(n),
		Middle:    SMA(closes, length),
		Upper:     nanSlice(n),
		Bandwidth: nanSlice(n),
		Percent:   nanSlice(n),
	}
	sd := Stdev(closes, length)
	for i := 0; i < n; i++ {
		if math.IsNaN(b.Middle[i]) || math.IsNaN(sd[i]) {
			continue
		}
		b.Lower[i] = b.Middle[i] - mult*sd[i]
		b.Upper[i] = b.Middle[i] + mult*sd[i]
		if b.Middle[i] != 0 {
			b.Bandwidth[i] = (b.Upper[i] - b.Lower[i]) / b.Middle[i] * 100
		}
		if width := b.Upper[i] - b.Lower[i]; width != 0 {
			b.Percent[i] = (closes[i] - b.Lower[i]) / width
		}
	}
	return b
}
