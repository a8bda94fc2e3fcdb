// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
)

// ClassesDependencies defines the interface for age class listings.
type ClassesDependencies interface {
	AgeClasses(ctx context.Context, cup string, season int) ([]string, error)
}

// ClassesHandler handles age class listing requests.
type ClassesHandler struct {
	deps ClassesDependencies
}

// NewClassesHandler creates a new classes handler.
func NewClassesHandler(deps ClassesDependencies) *ClassesHandler {
	return &ClassesHandler{deps: deps}
}

// HandleGetClasses handles GET /classes?cup=&season= requests.
func (h *ClassesHandler) HandleGetClasses(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_classes"
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

	classes, err := h.deps.AgeClasses(r.Context(), cup, season)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if classes == nil {
		classes = []string{}
	}
	writeJSON(w, http.StatusOK, classes)
}
