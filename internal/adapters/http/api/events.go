// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/jhoekx/ovcup/internal/adapters/ingest"
	"github.com/jhoekx/ovcup/internal/adapters/mq/queue"
	"github.com/jhoekx/ovcup/internal/domain/dedupe"
	"github.com/jhoekx/ovcup/internal/domain/model"
)

// maxFeedBytes caps the accepted feed document size.
const maxFeedBytes = 4 << 20

// ResultsDependencies defines the interface for feed submission.
type ResultsDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, j queue.Job) bool
}

// ResultsHandler handles feed submissions.
type ResultsHandler struct {
	deps ResultsDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultsDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandlePostResults handles POST /results?cup=&season= requests. The body is
// one feed document as published by the timing software.
func (h *ResultsHandler) HandlePostResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_results"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	cup := r.URL.Query().Get("cup")
	if cup == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("missing cup")))
		return
	}
	season, err := strconv.Atoi(r.URL.Query().Get("season"))
	if err != nil || season < 1 {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("season must be a positive number")))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxFeedBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	feed, err := ingest.ParseFeed(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if feed.Name == "" || feed.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("feed needs a name and a date")))
		return
	}

	// Idempotency check, mark as seen first.
	key := feed.Key()
	if h.deps.SeenAndRecord(r.Context(), key) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Feed: key, Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), queue.Job{Cup: cup, Season: season, Feed: feed}); !ok {
		// Roll back the "seen" status since the enqueue failed.
		h.deps.Unrecord(r.Context(), key)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Feed: key})
}

// EventsDependencies defines the interface for event listings.
type EventsDependencies interface {
	Events(ctx context.Context, cup string, season int) ([]model.Event, error)
}

// EventsHandler handles event listing requests.
type EventsHandler struct {
	deps EventsDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventsDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleGetEvents handles GET /events?cup=&season= requests.
func (h *EventsHandler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_events"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	cup := r.URL.Query().Get("cup")
	if cup == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("missing cup")))
		return
	}
	season, err := strconv.Atoi(r.URL.Query().Get("season"))
	if err != nil || season < 1 {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("season must be a positive number")))
		return
	}

	events, err := h.deps.Events(r.Context(), cup, season)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
