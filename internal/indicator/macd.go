package indicator

import "math"

// Convergence holds the MACD line, its signal line, and the histogram.
type Convergence struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes moving average convergence divergence with the supplied
// fast/slow/signal EMA lengths.
func MACD(closes []float64, fast, slow, signalLen int) Convergence {
	n := len(closes)
	c := Convergence{
		Line:      nanSlice(n),
		Signal:    nanSlice(n),
		Histogram: nanSlice(n),
	}
	if fast <= 0 || slow <= fast || signalLen <= 0 || n < slow {
		return c
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	for i := 0; i < n; i++ {
		if !math.IsNaN(fastEMA[i]) && !math.IsNaN(slowEMA[i]) {
			c.Line[i] = fastEMA[i] - slowEMA[i]
		}
	}

	// Signal line is an EMA over the valid MACD tail.
	start := slow - 1
	if start+signalLen > n {
		return c
	}
	tail := EMA(c.Line[start:], signalLen)
	for i, v := range tail {
		c.Signal[start+i] = v
		if !math.IsNaN(v) && !math.IsNaN(c.Line[start+i]) {
			c.Histogram[start+i] = c.Line[start+i] - v
		}
	}
	return c
}
