// Package model contains domain models passed between layers.
package model

import "time"

// EventResult is one athlete's outcome at a single event. A zero Score means
// the athlete did not score at that event (did not start, disqualified, or
// outside the counted categories); a zero Place means no single-event placing
// applies.
type EventResult struct {
	EventID int64
	Score   int
	Place   int
}

// Scored reports whether the result carries a counted score.
func (r EventResult) Scored() bool {
	return r.Score > 0
}

// RawEntry is one athlete's identity plus their results for every event of
// the requested cup and season, in the shared season event order. Events the
// athlete skipped appear as zero results so columns align across athletes.
type RawEntry struct {
	Name    string
	Club    string
	Results []EventResult
}

// AnnotatedResult is an EventResult tagged by the selector. Dropped is true
// only for positive scores excluded from the total by the best-N rule.
type AnnotatedResult struct {
	EventResult
	Dropped bool
}

// StandingScore is the wire shape of one per-event cell. Score and Place are
// nil when the athlete has no counted result for the event.
type StandingScore struct {
	EventID int64 `json:"eventId"`
	Score   *int  `json:"score"`
	Place   *int  `json:"place"`
	Dropped bool  `json:"dropped"`
}

// StandingEntry is one ranked row of a cup standing.
type StandingEntry struct {
	Name       string          `json:"name"`
	Club       string          `json:"club"`
	TotalScore int             `json:"totalScore"`
	Place      string          `json:"place"`
	Scores     []StandingScore `json:"scores"`
}

// Standing is the ordered result of one ranking query, best total first.
type Standing []StandingEntry

// Event describes a single competition occasion within a cup season.
type Event struct {
	ID       int64     `json:"id"`
	Cup      string    `json:"cup"`
	Season   int       `json:"season"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
	Date     time.Time `json:"date"`
}
