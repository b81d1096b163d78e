package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tascope/internal/analysis"
	"tascope/internal/feed"
	"tascope/internal/market"
)

type errorEnvelope struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, feed.ErrUnknownPeriod):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) symbolAndPeriod(r *http.Request) (string, string) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	period := r.URL.Query().Get("period")
	if period == "" {
		period = s.cfg.DefaultPeriod
	}
	return symbol, period
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	symbol, period := s.symbolAndPeriod(r)
	summary, err := s.analyzer.Run(r.Context(), symbol, period)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("summary request failed")
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	symbol, period := s.symbolAndPeriod(r)
	series, err := s.analyzer.History(r.Context(), symbol, period)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("history request failed")
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if s.alerts == nil {
		writeJSON(w, http.StatusOK, []market.Alert{})
		return
	}
	alerts := s.alerts.Recent()
	if alerts == nil {
		alerts = []market.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if s.book == nil || s.book.Empty() {
		writeError(w, http.StatusNotFound, "no holdings configured")
		return
	}
	marks := make(map[string]float64)
	for _, symbol := range s.book.Symbols() {
		series, err := s.analyzer.History(r.Context(), symbol, s.cfg.DefaultPeriod)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("portfolio mark failed")
			continue
		}
		if last, err := series.Last(); err == nil {
			marks[symbol] = last.Close
		}
	}
	writeJSON(w, http.StatusOK, s.book.Snapshot(marks))
}
