// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/tradeboard/internal/adapters/repository"
	service "github.com/okian/tradeboard/internal/app"
	"github.com/okian/tradeboard/internal/domain/ranking"
)

// Limit defaults for GET /rankings.
const (
	DefaultLimit = 5
	MaxLimit     = 1000
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RankingsDependencies
	CountryDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	rankingsHandler *RankingsHandler
	countryHandler  *CountryHandler
}

// ServerOption configures NewServer.
type ServerOption func(*serverOptions)

type serverOptions struct {
	defaultLimit int
	maxLimit     int
	defaultMode  ranking.Mode
}

// WithLimits sets the default and maximum ranking limit.
func WithLimits(def, maxLimit int) ServerOption {
	return func(o *serverOptions) {
		if def >= 0 && maxLimit >= def {
			o.defaultLimit = def
			o.maxLimit = maxLimit
		}
	}
}

// WithDefaultMode sets the mode used when a request names none.
func WithDefaultMode(m ranking.Mode) ServerOption {
	return func(o *serverOptions) {
		o.defaultMode = m
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	o := serverOptions{defaultLimit: DefaultLimit, maxLimit: MaxLimit, defaultMode: ranking.TopAndBottom}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:   NewHealthHandler(deps),
		statsHandler:    NewStatsHandler(deps),
		rankingsHandler: NewRankingsHandler(deps, o.defaultLimit, o.maxLimit, o.defaultMode),
		countryHandler:  NewCountryHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("/countries/", MetricsMiddleware(s.countryHandler.HandleGetCountry, "countries"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeLookupError maps domain errors to HTTP statuses.
func writeLookupError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotLoaded):
		writeError(w, http.StatusServiceUnavailable, "not_loaded", WrapKind(op, ErrNotLoaded, err))
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrUnknownContinent):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, ranking.ErrInvalidMetric):
		writeError(w, http.StatusBadRequest, "invalid_metric", Wrap(op, err))
	case errors.Is(err, ranking.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, "invalid_mode", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
