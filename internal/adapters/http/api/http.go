// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jhoekx/ovcup/internal/adapters/mq/queue"
	service "github.com/jhoekx/ovcup/internal/app"
	"github.com/jhoekx/ovcup/internal/domain/dedupe"
	"github.com/jhoekx/ovcup/internal/domain/model"
)

// Query mirrors the service-level standing query.
type Query = service.Query

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a feed for async ingestion. Returns false on backpressure.
	Enqueue(ctx context.Context, j queue.Job) bool

	// Read operations expose standings data.
	Standing(ctx context.Context, q Query) (model.Standing, error)
	Events(ctx context.Context, cup string, season int) ([]model.Event, error)
	AgeClasses(ctx context.Context, cup string, season int) ([]string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	resultsHandler *ResultsHandler
	eventsHandler  *EventsHandler
	classesHandler *ClassesHandler
	rankingHandler *RankingHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, defaultEvents, maxEvents int) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		resultsHandler: NewResultsHandler(deps),
		eventsHandler:  NewEventsHandler(deps),
		classesHandler: NewClassesHandler(deps),
		rankingHandler: NewRankingHandler(deps, defaultEvents, maxEvents),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/results", MetricsMiddleware(s.resultsHandler.HandlePostResults, "results"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleGetEvents, "events"))
	mux.HandleFunc("/classes", MetricsMiddleware(s.classesHandler.HandleGetClasses, "classes"))
	mux.HandleFunc("/ranking", MetricsMiddleware(s.rankingHandler.HandleGetRanking, "ranking"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Feed      string `json:"feed"`
	Duplicate bool   `json:"duplicate"`
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
