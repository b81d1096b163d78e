package feed

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownPeriod is returned for period strings the providers cannot express.
var ErrUnknownPeriod = errors.New("unknown period")

// Period is a parsed history window.
type Period struct {
	Label string // provider range token, e.g. "6mo"
	Days  int    // calendar days covered; 0 means "max"
}

var periodDays = map[string]int{
	"5d":  5,
	"1mo": 31,
	"3mo": 92,
	"6mo": 183,
	"1y":  365,
	"2y":  730,
	"5y":  1826,
	"10y": 3652,
	"max": 0,
}

// ParsePeriod validates a period token such as "6mo" or "1y". "ytd" resolves
// to the days elapsed since January 1st.
func ParsePeriod(raw string) (Period, error) {
	label := strings.ToLower(strings.TrimSpace(raw))
	if label == "" {
		label = "1y"
	}
	if label == "ytd" {
		now := time.Now().UTC()
		jan1 := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		days := int(now.Sub(jan1).Hours()/24) + 1
		return Period{Label: "ytd", Days: days}, nil
	}
	days, ok := periodDays[label]
	if !ok {
		return Period{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, raw)
	}
	return Period{Label: label, Days: days}, nil
}

// Start returns the inclusive start time of the window ending now.
func (p Period) Start(now time.Time) time.Time {
	if p.Days <= 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -p.Days)
}
