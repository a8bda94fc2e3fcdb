// Package standing computes a ranked cup standing from raw per-athlete event
// results. It is a pure computation: no I/O, no shared state, deterministic
// for identical inputs.
//
// The pipeline runs selector -> totalizer -> rank assigner -> formatter.
// Only the top EventsCount scores (by score value) count toward an athlete's
// total; the remaining positive scores are marked dropped. Athletes are
// ordered by total descending with a shared open rank on ties.
package standing

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/jhoekx/ovcup/internal/domain/model"
)

// scoreCeiling seeds the tie tracking comparison. Any value above the
// maximum attainable total works; it must never collide with a real total.
const scoreCeiling = math.MaxInt

// tieMarker labels an entry whose total equals the entry above it.
const tieMarker = "-"

// Input carries everything one standing computation needs.
type Input struct {
	// EventsCount is the maximum number of events counting toward a total.
	// Must be >= 0; zero means no event counts.
	EventsCount int

	// Entries are the raw per-athlete rows, already filtered to one cup,
	// season and age class, with results aligned on the shared event order.
	Entries []model.RawEntry
}

// Build runs the full pipeline and returns the ranked, annotated standing.
// An empty Entries slice is valid and yields an empty standing.
func Build(in Input) (model.Standing, error) {
	if in.EventsCount < 0 {
		return nil, fmt.Errorf("%w: events count %d", ErrNegativeEventsCount, in.EventsCount)
	}

	entries := make([]model.StandingEntry, 0, len(in.Entries))
	for _, raw := range in.Entries {
		annotated := Select(raw.Results, in.EventsCount)
		entries = append(entries, model.StandingEntry{
			Name:       raw.Name,
			Club:       raw.Club,
			TotalScore: Total(annotated),
			Scores:     format(annotated),
		})
	}

	return Rank(entries), nil
}

// Select marks which results count toward the total. The best n score values
// are retained; every other positive score is dropped. Selection is by score
// value, so results tied with the nth best value are all retained. Zero
// results are never dropped: they contribute nothing either way. A negative
// n behaves like n = 0.
func Select(results []model.EventResult, n int) []model.AnnotatedResult {
	threshold := selectionThreshold(results, n)

	annotated := make([]model.AnnotatedResult, len(results))
	for i, r := range results {
		annotated[i] = model.AnnotatedResult{
			EventResult: r,
			Dropped:     r.Scored() && r.Score < threshold,
		}
	}
	return annotated
}

// selectionThreshold returns the minimum score value that still counts.
func selectionThreshold(results []model.EventResult, n int) int {
	scores := make([]int, 0, len(results))
	for _, r := range results {
		if r.Scored() {
			scores = append(scores, r.Score)
		}
	}
	if n <= 0 {
		// Nothing counts; pick a bound above every positive score.
		// Negative n clamps to the n=0 behavior; Build rejects it earlier.
		return scoreCeiling
	}
	if len(scores) <= n {
		return 0
	}
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))
	return scores[n-1]
}

// Total sums the scores that survived selection. Zero results and dropped
// scores contribute nothing; the result is never negative.
func Total(results []model.AnnotatedResult) int {
	total := 0
	for _, r := range results {
		if r.Dropped {
			continue
		}
		total += r.Score
	}
	return total
}

// Rank orders entries by total descending and assigns display places.
//
// The first entry of a run of equal totals gets a numeric label "<n>."; the
// entries tied below it show the tie marker. The numeric label advances only
// when the total strictly decreases, so it counts the runs of distinct
// totals walked so far. The sort is stable: tied entries keep their input
// order.
func Rank(entries []model.StandingEntry) []model.StandingEntry {
	ranked := make([]model.StandingEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})

	previous := scoreCeiling
	position := 0
	for i := range ranked {
		if ranked[i].TotalScore < previous {
			position++
			ranked[i].Place = strconv.Itoa(position) + "."
			previous = ranked[i].TotalScore
		} else {
			ranked[i].Place = tieMarker
		}
	}
	return ranked
}

// format shapes annotated results for transmission, keeping the input event
// order so clients can align columns across athletes.
func format(results []model.AnnotatedResult) []model.StandingScore {
	scores := make([]model.StandingScore, len(results))
	for i, r := range results {
		cell := model.StandingScore{EventID: r.EventID, Dropped: r.Dropped}
		if r.Scored() {
			score := r.Score
			cell.Score = &score
		}
		if r.Place > 0 {
			place := r.Place
			cell.Place = &place
		}
		scores[i] = cell
	}
	return scores
}
