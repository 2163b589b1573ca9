// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/okian/fplcoach/internal/adapters/repository"
	"github.com/okian/fplcoach/internal/domain/advisor"
	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/internal/domain/types"
	"github.com/okian/fplcoach/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Ready() bool
	Formation() model.Formation
	GetStats() types.Stats

	Captain(ctx context.Context) (model.ScoredRow, error)
	Transfers(ctx context.Context) ([]model.ScoredRow, error)
	Lineup(ctx context.Context, formation model.Formation) ([]model.LineupEntry, error)
	RateTeam(ctx context.Context, names []string) (model.Rating, error)

	Players(ctx context.Context, filter advisor.Filter) ([]model.ScoredRow, error)
	Player(ctx context.Context, name string) (model.ScoredRow, error)
	Compare(ctx context.Context, first, second string) (advisor.Comparison, error)
	Injuries(ctx context.Context) ([]model.PlayerRecord, error)
	DebugCaptain(ctx context.Context, name string) (advisor.CaptainTrace, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps           Dependencies
	corsOrigins    []string
	maxBodyBytes   int64
	requestTimeout time.Duration
	mounts         []mount
	registrars     []func(chi.Router)
	logger         logger.Logger
}

type mount struct {
	pattern string
	handler http.Handler
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		corsOrigins:    []string{"*"},
		maxBodyBytes:   1 << 20,
		requestTimeout: 30 * time.Second,
		logger:         logger.Get().Named("http"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router with middleware and every route attached.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestContext)
	r.Use(chimiddleware.RealIP)
	r.Use(s.accessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", chimiddleware.RequestIDHeader},
		ExposedHeaders: []string{chimiddleware.RequestIDHeader},
		MaxAge:         300,
	}))

	s.Register(r)
	for _, register := range s.registrars {
		register(r)
	}
	for _, m := range s.mounts {
		r.Handle(m.pattern, m.handler)
	}
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	health := NewHealthHandler(s.deps)
	stats := NewStatsHandler(s.deps)
	recs := NewRecommendationHandler(s.deps, s.maxBodyBytes)
	players := NewPlayersHandler(s.deps)

	r.Get("/healthz", MetricsMiddleware(health.HandleHealth, "healthz"))
	r.Get("/metrics", health.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(stats.HandleStats, "stats"))

	r.Get("/captain", MetricsMiddleware(recs.HandleCaptain, "captain"))
	r.Get("/transfers", MetricsMiddleware(recs.HandleTransfers, "transfers"))
	r.Get("/team_builder", MetricsMiddleware(recs.HandleTeamBuilder, "team_builder"))
	r.Post("/team_rating", MetricsMiddleware(recs.HandleTeamRating, "team_rating"))

	r.Get("/players", MetricsMiddleware(players.HandleList, "players"))
	r.Get("/players/{name}", MetricsMiddleware(players.HandleGet, "player"))
	r.Get("/compare", MetricsMiddleware(players.HandleCompare, "compare"))
	r.Get("/injuries", MetricsMiddleware(players.HandleInjuries, "injuries"))
	r.Get("/debug/captain", MetricsMiddleware(players.HandleDebugCaptain, "debug_captain"))
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

// writeDomainError translates service errors into status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var fe *model.FormationError
	switch {
	case errors.Is(err, repository.ErrNotReady), errors.Is(err, advisor.ErrNoSnapshot):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	case errors.Is(err, model.ErrSchema):
		writeError(w, http.StatusInternalServerError, "schema_error", err)
	case errors.Is(err, model.ErrEmptySet):
		writeError(w, http.StatusNotFound, "no_candidate", err)
	case errors.Is(err, model.ErrNoMatch):
		writeError(w, http.StatusNotFound, "no_match", err)
	case errors.As(err, &fe), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
