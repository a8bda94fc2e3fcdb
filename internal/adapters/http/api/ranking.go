// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	service "github.com/jhoekx/ovcup/internal/app"
	"github.com/jhoekx/ovcup/internal/domain/model"
)

// RankingDependencies defines the interface for standing queries.
type RankingDependencies interface {
	Standing(ctx context.Context, q Query) (model.Standing, error)
}

// RankingHandler handles cup standing requests.
type RankingHandler struct {
	deps          RankingDependencies
	defaultEvents int
	maxEvents     int
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps RankingDependencies, defaultEvents, maxEvents int) *RankingHandler {
	return &RankingHandler{
		deps:          deps,
		defaultEvents: defaultEvents,
		maxEvents:     maxEvents,
	}
}

// HandleGetRanking handles GET /ranking?cup=&season=&ageClass=&events= requests.
func (h *RankingHandler) HandleGetRanking(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ranking"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	params := r.URL.Query()
	season, err := strconv.Atoi(params.Get("season"))
	if err != nil || season < 1 {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("season must be a positive number")))
		return
	}

	events := h.defaultEvents
	if raw := params.Get("events"); raw != "" {
		events, err = strconv.Atoi(raw)
		if err != nil || events < 0 {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, errors.New("events must be a non-negative number")))
			return
		}
	}
	if h.maxEvents > 0 && events > h.maxEvents {
		writeError(w, http.StatusBadRequest, "events_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	result, err := h.deps.Standing(r.Context(), Query{
		Cup:         params.Get("cup"),
		Season:      season,
		AgeClass:    params.Get("ageClass"),
		EventsCount: events,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuery) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if result == nil {
		result = model.Standing{}
	}
	writeJSON(w, http.StatusOK, result)
}
