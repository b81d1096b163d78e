package indicator

import (
	"math"

	"tascope/internal/market"
)

// VWAP computes the cumulative volume-weighted average price over the series,
// using the typical price (high+low+close)/3 per bar. Bars with zero volume
// carry the previous value forward.
func VWAP(bars []market.Bar) []float64 {
	out := nanSlice(len(bars))
	var cumPV, cumVol float64
	for i, b := range bars {
		typical := (b.High + b.Low + b.Close) / 3
		cumPV += typical * b.Volume
		cumVol += b.Volume
		if cumVol > 0 {
			out[i] = cumPV / cumVol
		} else if i > 0 && !math.IsNaN(out[i-1]) {
			out[i] = out[i-1]
		}
	}
	return out
}
