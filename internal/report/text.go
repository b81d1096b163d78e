// Package report renders technical summaries for humans and appends JSONL
// records for machines.
package report

import (
	"fmt"
	"sort"
	"strings"

	"tascope/internal/analysis"
)

// Text renders the section-by-section console report for a summary.
func Text(s *analysis.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 50))
	fmt.Fprintf(&b, "TECHNICAL ANALYSIS SUMMARY - %s (%s)\n", s.Symbol, s.Date)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 50))

	section(&b, "PRICE INFORMATION")
	fmt.Fprintf(&b, "Current Price: $%.2f\n", s.Price.Close)
	fmt.Fprintf(&b, "Change: %+.2f (%+.2f%%)\n", s.Price.Change, s.Price.ChangePct)

	section(&b, "MOVING AVERAGES")
	for _, n := range sortedLengths(s.MovingAverages.PriceVs) {
		fmt.Fprintf(&b, "Price vs SMA(%d): %+.2f%%\n", n, s.MovingAverages.PriceVs[n])
	}
	fmt.Fprintf(&b, "SMA Cross: %s\n", s.MovingAverages.Cross)

	section(&b, "BOLLINGER BANDS")
	fmt.Fprintf(&b, "%%B: %.2f\n", s.Bollinger.Percent)
	fmt.Fprintf(&b, "Position: %s\n", s.Bollinger.Position)

	section(&b, "RELATIVE STRENGTH INDEX (RSI)")
	fmt.Fprintf(&b, "Value: %.2f\n", s.RSI.Value)
	fmt.Fprintf(&b, "Signal: %s\n", s.RSI.Signal)

	section(&b, "MOVING AVERAGE CONVERGENCE DIVERGENCE (MACD)")
	fmt.Fprintf(&b, "MACD: %.4f\n", s.MACD.Value)
	fmt.Fprintf(&b, "Signal Line: %.4f\n", s.MACD.Signal)
	fmt.Fprintf(&b, "Histogram: %+.4f\n", s.MACD.Histogram)
	fmt.Fprintf(&b, "Trend: %s\n", s.MACD.Trend)

	section(&b, "VOLUME WEIGHTED AVERAGE PRICE (VWAP)")
	fmt.Fprintf(&b, "VWAP: %.2f\n", s.VWAP.Value)
	fmt.Fprintf(&b, "Price vs VWAP: %+.2f%%\n", s.VWAP.PriceVsVWAP)

	return b.String()
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n%s:\n%s\n", title, strings.Repeat("-", 30))
}

func sortedLengths(m map[int]float64) []int {
	out := make([]int, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
