// Package indicator implements technical indicators as pure functions over price series.
//
// Outputs are aligned index-for-index with their inputs; positions inside the
// warmup window hold NaN so callers can tell "no value yet" from zero.
package indicator

import "math"

// SMA computes a simple moving average with the given window length.
func SMA(values []float64, length int) []float64 {
	out := nanSlice(len(values))
	if length <= 0 || len(values) < length {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= length {
			sum -= values[i-length]
		}
		if i >= length-1 {
			out[i] = sum / float64(length)
		}
	}
	return out
}

// EMA computes an exponential moving average seeded with the SMA of the first window.
func EMA(values []float64, length int) []float64 {
	out := nanSlice(len(values))
	if length <= 0 || len(values) < length {
		return out
	}
	var seed float64
	for _, v := range values[:length] {
		seed += v
	}
	seed /= float64(length)
	out[length-1] = seed

	alpha := 2.0 / (float64(length) + 1.0)
	prev := seed
	for i := length; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// Stdev computes a rolling sample standard deviation.
func Stdev(values []float64, length int) []float64 {
	out := nanSlice(len(values))
	if length <= 1 || len(values) < length {
		return out
	}
	for i := length - 1; i < len(values); i++ {
		window := values[i-length+1 : i+1]
		var mean float64
		for _, v := range window {
			mean += v
		}
		mean /= float64(length)
		var ss float64
		for _, v := range window {
			d := v - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(length-1))
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
