// Binary analyze runs a one-shot technical analysis for a symbol and prints
// the text report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"tascope/internal/analysis"
	"tascope/internal/config"
	"tascope/internal/feed"
	"tascope/internal/portfolio"
	"tascope/internal/report"
	"tascope/internal/store"
	"tascope/internal/util"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional YAML config file")
		period     = flag.String("period", "1y", "history period (5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max)")
		provider   = flag.String("provider", "", "history provider override (stub, yahoo, alphavantage)")
		asJSON     = flag.Bool("json", false, "emit the summary as JSON instead of text")
		logLevel   = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	symbol := "AAPL"
	if flag.NArg() > 0 {
		symbol = flag.Arg(0)
	}

	_ = godotenv.Load() // best-effort

	log := util.NewConsoleLogger(*logLevel)

	cfg := &config.Config{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
		cfg = loaded
	}
	if *provider != "" {
		cfg.Provider.Name = *provider
	}
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = feed.ProviderYahoo
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src := buildFeed(cfg, log)
	opts := []analysis.Option{}
	if cfg.Cache.Path != "" {
		cache, err := store.Open(cfg.Cache.Path)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Cache.Path).Msg("bar cache unavailable")
		} else {
			defer cache.Close()
			opts = append(opts, analysis.WithCache(cache, time.Duration(cfg.Cache.TTLSecs)*time.Second))
		}
	}
	analyzer := analysis.New(src, cfg.Indicators, log, opts...)

	summary, err := analyzer.Run(ctx, symbol, *period)
	if err != nil {
		log.Fatal().Err(err).Str("symbol", symbol).Msg("analysis failed")
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			log.Fatal().Err(err).Msg("encode summary")
		}
	} else {
		fmt.Print(report.Text(summary))
	}

	if cfg.Report.SummariesPath != "" {
		rec, err := report.NewJSONLRecorder(cfg.Report.SummariesPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Report.SummariesPath).Msg("summary log unavailable")
		} else {
			rec.Record("summary", summary)
			_ = rec.Close()
		}
	}

	printHoldings(ctx, cfg, analyzer, log)
}

func buildFeed(cfg *config.Config, log zerolog.Logger) *feed.Feed {
	opts := []feed.Option{}
	if cfg.Provider.YahooBaseURL != "" {
		opts = append(opts, feed.WithYahooBaseURL(cfg.Provider.YahooBaseURL))
	}
	apiKey := ""
	if cfg.Provider.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.Provider.APIKeyEnv)
	}
	if cfg.Provider.AlphaVantageBaseURL != "" || apiKey != "" {
		opts = append(opts, feed.WithAlphaVantageConfig(cfg.Provider.AlphaVantageBaseURL, apiKey))
	}
	if cfg.Provider.TimeoutSecs > 0 {
		opts = append(opts, feed.WithTimeout(time.Duration(cfg.Provider.TimeoutSecs)*time.Second))
	}
	return feed.NewFeed(cfg.Provider.Name, nil, cfg.Watchlist.Period, log, opts...)
}

func printHoldings(ctx context.Context, cfg *config.Config, analyzer *analysis.Analyzer, log zerolog.Logger) {
	if len(cfg.Portfolio.Holdings) == 0 {
		return
	}
	book, err := portfolio.NewBook(cfg.Portfolio.Holdings)
	if err != nil {
		log.Warn().Err(err).Msg("invalid holdings, skipping portfolio")
		return
	}
	marks := make(map[string]float64)
	for _, sym := range book.Symbols() {
		series, err := analyzer.History(ctx, sym, "1mo")
		if err != nil {
			log.Warn().Err(err).Str("symbol", sym).Msg("portfolio mark failed")
			continue
		}
		if last, err := series.Last(); err == nil {
			marks[sym] = last.Close
		}
	}
	snap := book.Snapshot(marks)

	fmt.Println("\nPORTFOLIO:")
	fmt.Println("------------------------------")
	for _, pos := range snap.Positions {
		fmt.Printf("%-6s qty %.2f @ $%.2f -> $%.2f (%+.2f)\n",
			pos.Symbol, pos.Qty, pos.CostBasis, pos.MarketValue, pos.Unrealized)
	}
	fmt.Printf("Total unrealized: %+.2f\n", snap.Unrealized)
}
