package watch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tascope/internal/analysis"
	"tascope/internal/market"
	"tascope/internal/metrics"
)

// Recorder captures emitted alerts for later inspection.
type Recorder interface {
	Record(kind string, payload interface{})
}

// Summarizer reduces a series to a technical summary.
type Summarizer interface {
	Summarize(series *market.Series, period string) (*analysis.Summary, error)
}

// Watcher runs the configured rules over refreshed series and fans alerts out
// to subscribers, the recorder, and a bounded in-memory ring.
type Watcher struct {
	rules      []Rule
	summarizer Summarizer
	period     string
	recorder   Recorder
	log        zerolog.Logger

	mu     sync.Mutex
	recent []market.Alert
	max    int
	subs   map[chan market.Alert]struct{}
}

// NewWatcher wires rules to a summarizer. maxRecent bounds the alert ring.
func NewWatcher(rules []Rule, summarizer Summarizer, period string, maxRecent int, recorder Recorder, log zerolog.Logger) *Watcher {
	if maxRecent <= 0 {
		maxRecent = 128
	}
	return &Watcher{
		rules:      rules,
		summarizer: summarizer,
		period:     period,
		recorder:   recorder,
		log:        log,
		max:        maxRecent,
		subs:       make(map[chan market.Alert]struct{}),
	}
}

// Run consumes refreshed series until the context is canceled.
func (w *Watcher) Run(ctx context.Context, in <-chan market.Series) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case series, ok := <-in:
			if !ok {
				return nil
			}
			w.evaluate(&series)
		}
	}
}

func (w *Watcher) evaluate(series *market.Series) {
	summary, err := w.summarizer.Summarize(series, w.period)
	if err != nil {
		if errors.Is(err, analysis.ErrInsufficientData) {
			w.log.Debug().Str("symbol", series.Symbol).Msg("skipping short series")
			return
		}
		w.log.Warn().Err(err).Str("symbol", series.Symbol).Msg("summary failed")
		return
	}
	for _, rule := range w.rules {
		alert := rule.OnSummary(summary)
		if alert == nil {
			continue
		}
		if alert.Ts.IsZero() {
			alert.Ts = time.Now().UTC()
		}
		w.publish(*alert)
	}
}

func (w *Watcher) publish(alert market.Alert) {
	metrics.AlertsTotal.WithLabelValues(alert.Rule).Inc()
	w.log.Info().
		Str("symbol", alert.Symbol).
		Str("rule", alert.Rule).
		Float64("score", alert.Score).
		Str("reason", alert.Reason).
		Msg("alert")
	if w.recorder != nil {
		w.recorder.Record("alert", alert)
	}

	w.mu.Lock()
	w.recent = append(w.recent, alert)
	if len(w.recent) > w.max {
		w.recent = w.recent[len(w.recent)-w.max:]
	}
	for sub := range w.subs {
		select {
		case sub <- alert:
		default: // slow subscriber, drop
		}
	}
	w.mu.Unlock()
}

// Recent returns a copy of the most recent alerts, newest last.
func (w *Watcher) Recent() []market.Alert {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]market.Alert, len(w.recent))
	copy(out, w.recent)
	return out
}

// Subscribe registers a buffered alert channel; call the returned func to
// unsubscribe.
func (w *Watcher) Subscribe() (<-chan market.Alert, func()) {
	ch := make(chan market.Alert, 16)
	w.mu.Lock()
	w.subs[ch] = struct{}{}
	w.mu.Unlock()
	return ch, func() {
		w.mu.Lock()
		delete(w.subs, ch)
		w.mu.Unlock()
	}
}
