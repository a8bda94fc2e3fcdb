// Package repository persists events, runners and results in SQLite and
// serves the read queries the standing computation needs.
package repository

import (
	"context"

	"github.com/jhoekx/ovcup/internal/domain/model"
	"github.com/jhoekx/ovcup/internal/domain/scoring"
)

// Result is one stored row tying a runner to an event course.
type Result struct {
	EventID      int64
	RunnerID     int64
	CategoryName string
	AgeClass     string
	Position     int
	Seconds      int
}

// Counts summarizes store contents for the stats endpoint.
type Counts struct {
	Events  int `json:"events"`
	Runners int `json:"runners"`
	Results int `json:"results"`
}

// Store provides read/write access to the season results.
type Store interface {
	// ReplaceEvent upserts an event identified by (cup, season, name, date)
	// and clears any results previously stored for it. Returns the event id.
	ReplaceEvent(ctx context.Context, ev model.Event) (int64, error)

	// UpsertRunner inserts a runner or refreshes their club. Runner names are
	// unique across the store. Returns the runner id.
	UpsertRunner(ctx context.Context, name, club string) (int64, error)

	// InsertResult stores one runner's result on one event course.
	InsertResult(ctx context.Context, r Result) error

	// ListEvents returns the events of a cup season ordered by date.
	ListEvents(ctx context.Context, cup string, season int) ([]model.Event, error)

	// ListPerformances returns every performance of the cup season, ordered
	// by runner name then event date. Scoring needs the complete field of a
	// course to find its fastest time, so no class filtering happens here.
	ListPerformances(ctx context.Context, cup string, season int) ([]scoring.Performance, error)

	// ListAgeClasses returns the distinct age classes recorded for a cup
	// season, sorted. Serves the category picker as explicit data.
	ListAgeClasses(ctx context.Context, cup string, season int) ([]string, error)

	// Counts reports how many events, runners and results are stored.
	Counts(ctx context.Context) (Counts, error)

	// Close releases the underlying database handle.
	Close() error
}
