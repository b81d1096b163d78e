// Binary server runs the analysis API, the watch loop, and the metrics
// endpoint as one long-lived process.
package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"tascope/internal/analysis"
	"tascope/internal/config"
	"tascope/internal/feed"
	"tascope/internal/market"
	"tascope/internal/metrics"
	"tascope/internal/portfolio"
	"tascope/internal/report"
	"tascope/internal/server"
	"tascope/internal/store"
	"tascope/internal/util"
	"tascope/internal/watch"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "YAML config file")
	flag.Parse()

	_ = godotenv.Load() // best-effort

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := util.NewLogger("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cache, err := store.Open(cfg.Cache.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Cache.Path).Msg("open bar cache")
	}
	defer cache.Close()
	for _, sym := range cfg.Watchlist.Symbols {
		if n, err := cache.Count(ctx, sym, "1d"); err == nil && n > 0 {
			log.Debug().Str("symbol", sym).Int("bars", n).Msg("bar cache primed")
		}
	}

	dataFeed := buildFeed(cfg, log)
	ttl := time.Duration(cfg.Cache.TTLSecs) * time.Second
	analyzer := analysis.New(dataFeed, cfg.Indicators, log, analysis.WithCache(cache, ttl))

	recorder, err := report.NewJSONLRecorder(cfg.Report.AlertsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Report.AlertsPath).Msg("open alert recorder")
	}
	defer recorder.Close()

	rules := watch.BuildAll(cfg.Watch.Modes, watch.Params{
		RSIOverbought: cfg.Watch.Params.RSIOverbought,
		RSIOversold:   cfg.Watch.Params.RSIOversold,
	})
	watcher := watch.NewWatcher(rules, analyzer, cfg.Watchlist.Period, cfg.Server.MaxAlerts, recorder, log)

	seriesCh := make(chan market.Series, 64)
	go func() {
		if err := dataFeed.Watch(ctx, seriesCh); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("feed stopped")
			cancel()
		}
	}()
	go func() { _ = watcher.Run(ctx, seriesCh) }()

	go watchConfig(ctx, *configPath, dataFeed, log)

	var book *portfolio.Book
	if len(cfg.Portfolio.Holdings) > 0 {
		book, err = portfolio.NewBook(cfg.Portfolio.Holdings)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid holdings")
		}
	}

	api := server.New(server.Config{
		Addr:          cfg.Server.Addr,
		RateLimitRPM:  cfg.Server.RateLimitRPM,
		DefaultPeriod: cfg.Watchlist.Period,
	}, analyzer, watcher, book, log)

	go func() {
		if err := api.Start(); err != nil {
			log.Error().Err(err).Msg("api stopped")
			cancel()
		}
	}()

	log.Info().
		Str("provider", dataFeed.Provider()).
		Strs("symbols", dataFeed.Symbols()).
		Msg("tascope started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("api shutdown")
	}
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
	if cfg.Provider.RefreshIntervalSecs > 0 {
		opts = append(opts, feed.WithRefreshInterval(time.Duration(cfg.Provider.RefreshIntervalSecs)*time.Second))
	}
	return feed.NewFeed(cfg.Provider.Name, cfg.Watchlist.Symbols, cfg.Watchlist.Period, log, opts...)
}

// watchConfig reloads the watchlist when the config file changes on disk.
// Other settings require a restart.
func watchConfig(ctx context.Context, path string, dataFeed *feed.Feed, log zerolog.Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("config watch unavailable")
		return
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config watch unavailable")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := config.Load(path)
			if err != nil {
				log.Warn().Err(err).Msg("config reload failed")
				continue
			}
			dataFeed.SetSymbols(cfg.Watchlist.Symbols)
			log.Info().Strs("symbols", dataFeed.Symbols()).Msg("watchlist reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("config watch error")
		}
	}
}
