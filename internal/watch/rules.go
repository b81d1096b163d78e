// Package watch evaluates alert rules against refreshed technical summaries.
package watch

import (
	"fmt"
	"strings"
	"sync"

	"tascope/internal/analysis"
	"tascope/internal/market"
)

// Rule defines behaviour shared by alert rule implementations.
type Rule interface {
	OnSummary(s *analysis.Summary) *market.Alert
	Name() string
}

// Params expresses tunable knobs required by rule constructors.
type Params struct {
	RSIOverbought float64
	RSIOversold   float64
}

// Build returns a rule implementation matching the configured mode.
func Build(mode string, params Params) Rule {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "rsi", "rsi_band":
		return NewRSIBand(params.RSIOverbought, params.RSIOversold)
	case "macd", "macd_cross":
		return NewMACDCross()
	case "sma", "sma_cross":
		return NewSMACross()
	default:
		return NewRSIBand(params.RSIOverbought, params.RSIOversold)
	}
}

// BuildAll constructs one rule per mode, skipping duplicates.
func BuildAll(modes []string, params Params) []Rule {
	seen := make(map[string]struct{}, len(modes))
	rules := make([]Rule, 0, len(modes))
	for _, mode := range modes {
		rule := Build(mode, params)
		if _, dup := seen[rule.Name()]; dup {
			continue
		}
		seen[rule.Name()] = struct{}{}
		rules = append(rules, rule)
	}
	if len(rules) == 0 {
		rules = append(rules, Build("", params))
	}
	return rules
}

// RSIBand alerts when the RSI crosses into the overbought or oversold band,
// once per excursion.
type RSIBand struct {
	overbought float64
	oversold   float64
	mu         sync.Mutex
	zones      map[string]int // +1 overbought, -1 oversold, 0 neutral
}

// NewRSIBand builds an RSIBand rule with the supplied thresholds.
func NewRSIBand(overbought, oversold float64) *RSIBand {
	if overbought <= 0 || overbought > 100 {
		overbought = 70
	}
	if oversold <= 0 || oversold >= overbought {
		oversold = 30
	}
	return &RSIBand{
		overbought: overbought,
		oversold:   oversold,
		zones:      make(map[string]int),
	}
}

// Name returns the configured identifier for logging.
func (r *RSIBand) Name() string { return "rsi_band" }

// OnSummary emits an alert when the symbol enters a band it was not already in.
func (r *RSIBand) OnSummary(s *analysis.Summary) *market.Alert {
	if s == nil || s.Symbol == "" {
		return nil
	}
	zone := 0
	switch {
	case s.RSI.Value > r.overbought:
		zone = 1
	case s.RSI.Value < r.oversold:
		zone = -1
	}

	r.mu.Lock()
	prev := r.zones[s.Symbol]
	r.zones[s.Symbol] = zone
	r.mu.Unlock()

	if zone == 0 || zone == prev {
		return nil
	}
	reason := fmt.Sprintf("RSI %.1f above %.0f", s.RSI.Value, r.overbought)
	if zone < 0 {
		reason = fmt.Sprintf("RSI %.1f below %.0f", s.RSI.Value, r.oversold)
	}
	// Overbought reads bearish, oversold bullish.
	return &market.Alert{Symbol: s.Symbol, Rule: r.Name(), Score: float64(-zone), Reason: reason}
}

// MACDCross alerts when the MACD line crosses its signal line.
type MACDCross struct {
	mu    sync.Mutex
	signs map[string]int
}

// NewMACDCross builds a MACDCross rule.
func NewMACDCross() *MACDCross {
	return &MACDCross{signs: make(map[string]int)}
}

// Name returns the configured identifier for logging.
func (r *MACDCross) Name() string { return "macd_cross" }

// OnSummary emits an alert when the line/signal relationship flips sign.
func (r *MACDCross) OnSummary(s *analysis.Summary) *market.Alert {
	if s == nil || s.Symbol == "" {
		return nil
	}
	sign := 0
	switch {
	case s.MACD.Histogram > 0:
		sign = 1
	case s.MACD.Histogram < 0:
		sign = -1
	}

	r.mu.Lock()
	prev, seen := r.signs[s.Symbol]
	r.signs[s.Symbol] = sign
	r.mu.Unlock()

	if !seen || sign == 0 || sign == prev {
		return nil
	}
	direction := "above"
	if sign < 0 {
		direction = "below"
	}
	reason := fmt.Sprintf("MACD %.4f crossed %s signal %.4f", s.MACD.Value, direction, s.MACD.Signal)
	return &market.Alert{Symbol: s.Symbol, Rule: r.Name(), Score: float64(sign), Reason: reason}
}

// SMACross alerts on the golden/death cross day detected by the summary.
type SMACross struct {
	mu    sync.Mutex
	fired map[string]string // symbol -> last cross date alerted
}

// NewSMACross builds an SMACross rule.
func NewSMACross() *SMACross {
	return &SMACross{fired: make(map[string]string)}
}

// Name returns the configured identifier for logging.
func (r *SMACross) Name() string { return "sma_cross" }

// OnSummary emits an alert once per cross day.
func (r *SMACross) OnSummary(s *analysis.Summary) *market.Alert {
	if s == nil || s.Symbol == "" || s.MovingAverages.Cross == analysis.CrossNone {
		return nil
	}

	r.mu.Lock()
	already := r.fired[s.Symbol] == s.Date
	r.fired[s.Symbol] = s.Date
	r.mu.Unlock()
	if already {
		return nil
	}

	score := 1.0
	if s.MovingAverages.Cross == analysis.CrossDeath {
		score = -1.0
	}
	reason := fmt.Sprintf("%s on %s", s.MovingAverages.Cross, s.Date)
	return &market.Alert{Symbol: s.Symbol, Rule: r.Name(), Score: score, Reason: reason}
}
