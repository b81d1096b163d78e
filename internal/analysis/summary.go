// Package analysis turns price history into signal-bearing technical summaries.
package analysis

// Cross labels for the SMA(50)/SMA(200) relationship.
const (
	CrossGolden = "Golden Cross"
	CrossDeath  = "Death Cross"
	CrossNone   = "No Cross"
)

// Bollinger position labels.
const (
	BandUpper   = "Upper Band"
	BandLower   = "Lower Band"
	BandBetween = "Between Bands"
)

// RSI signal labels.
const (
	RSIOverbought = "Overbought"
	RSIOversold   = "Oversold"
	RSINeutral    = "Neutral"
)

// MACD trend labels.
const (
	TrendBullish = "Bullish"
	TrendBearish = "Bearish"
	TrendNeutral = "Neutral"
)

// PriceInfo describes the latest close and its day-over-day move.
type PriceInfo struct {
	Close     float64 `json:"close"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

// MovingAverages reports price distance from each configured SMA plus the
// 50/200 cross state. Lengths without enough history are absent from the map.
type MovingAverages struct {
	PriceVs map[int]float64 `json:"price_vs_sma"`
	Cross   string          `json:"cross"`
}

// BollingerInfo reports %B and the band the close sits in.
type BollingerInfo struct {
	Percent  float64 `json:"percent_b"`
	Position string  `json:"position"`
}

// RSIInfo reports the oscillator value and its overbought/oversold signal.
type RSIInfo struct {
	Value  float64 `json:"value"`
	Signal string  `json:"signal"`
}

// MACDInfo reports the MACD line, signal line, histogram, and trend call.
type MACDInfo struct {
	Value     float64 `json:"value"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
	Trend     string  `json:"trend"`
}

// VWAPInfo reports the series VWAP and price distance from it.
type VWAPInfo struct {
	Value       float64 `json:"value"`
	PriceVsVWAP float64 `json:"price_vs_vwap"`
}

// Summary is the complete technical picture for one symbol at one point in time.
type Summary struct {
	Symbol         string         `json:"symbol"`
	Date           string         `json:"date"`
	Period         string         `json:"period"`
	Price          PriceInfo      `json:"price"`
	MovingAverages MovingAverages `json:"moving_averages"`
	Bollinger      BollingerInfo  `json:"bollinger_bands"`
	RSI            RSIInfo        `json:"rsi"`
	MACD           MACDInfo       `json:"macd"`
	VWAP           VWAPInfo       `json:"vwap"`
}
