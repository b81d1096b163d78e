// Package server exposes analysis results over HTTP and websocket.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"tascope/internal/analysis"
	"tascope/internal/market"
	"tascope/internal/portfolio"
)

// AnalysisService is the slice of the analyzer the handlers need.
type AnalysisService interface {
	Run(ctx context.Context, symbol, period string) (*analysis.Summary, error)
	History(ctx context.Context, symbol, period string) (*market.Series, error)
}

// AlertSource exposes recent alerts and a live subscription.
type AlertSource interface {
	Recent() []market.Alert
	Subscribe() (<-chan market.Alert, func())
}

// Config tunes the HTTP server.
type Config struct {
	Addr          string
	RateLimitRPM  int
	DefaultPeriod string
}

// Server wires the analyzer, watcher, and portfolio book into a chi router.
type Server struct {
	cfg      Config
	analyzer AnalysisService
	alerts   AlertSource
	book     *portfolio.Book
	log      zerolog.Logger
	httpSrv  *http.Server
}

// New constructs a server; alerts and book may be nil, which disables their
// routes' content (not the routes themselves).
func New(cfg Config, analyzer AnalysisService, alerts AlertSource, book *portfolio.Book, log zerolog.Logger) *Server {
	if cfg.DefaultPeriod == "" {
		cfg.DefaultPeriod = "1y"
	}
	s := &Server{cfg: cfg, analyzer: analyzer, alerts: alerts, book: book, log: log}
	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()
	if s.cfg.RateLimitRPM > 0 {
		r.Use(httprate.LimitByIP(s.cfg.RateLimitRPM, time.Minute))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/summary/{symbol}", s.handleSummary)
		r.Get("/history/{symbol}", s.handleHistory)
		r.Get("/alerts", s.handleAlerts)
		r.Get("/portfolio", s.handlePortfolio)
		r.Get("/stream", s.handleStream)
	})
	return r
}

// Handler returns the router for tests.
func (s *Server) Handler() http.Handler { return s.httpSrv.Handler }

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.cfg.Addr).Msg("api listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
