// Package metrics registers prometheus collectors shared across the process.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BarsFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bars_fetched_total", Help: "Count of OHLCV bars fetched from providers"},
		[]string{"provider", "symbol"},
	)
	FetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fetch_errors_total", Help: "Provider fetch failures"},
		[]string{"provider"},
	)
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "analyses_total", Help: "Technical summaries computed"},
		[]string{"symbol"},
	)
	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "alerts_total", Help: "Watch rule alerts emitted"},
		[]string{"rule"},
	)
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "bar_cache_hits_total", Help: "Bar cache lookups served without a provider fetch"},
	)
	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "bar_cache_misses_total", Help: "Bar cache lookups that fell through to a provider"},
	)
)

func init() {
	prometheus.MustRegister(BarsFetched, FetchErrors, AnalysesTotal, AlertsTotal, CacheHits, CacheMisses)
}

// Serve exposes /metrics on the given address in a background goroutine.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
