// Package scoring computes per-event scores from finish times.
//
// A performance is scored relative to the fastest time on the same course of
// the same event: score = baseScore * fastest / own time, using integer
// division. The fastest performance scores exactly baseScore; everyone else
// scores less in proportion to how far behind they finished.
package scoring

// defaultBaseScore is the score awarded to the fastest time on a course.
const defaultBaseScore = 1000

// Performance is one athlete's run on one course of one event.
type Performance struct {
	Name         string
	Club         string
	EventID      int64
	AgeClass     string
	CategoryName string
	Position     int
	Seconds      int
	Score        int
}

// Option applies a configuration option to the RelativeScorer.
type Option func(*RelativeScorer)

// WithBaseScore sets the score of the fastest time on a course.
func WithBaseScore(base int) Option {
	return func(s *RelativeScorer) {
		if base > 0 {
			s.baseScore = base
		}
	}
}

// RelativeScorer scores performances against the fastest time per course.
type RelativeScorer struct {
	baseScore int
}

// NewRelativeScorer creates a scorer with configuration options.
func NewRelativeScorer(opts ...Option) *RelativeScorer {
	s := &RelativeScorer{baseScore: defaultBaseScore}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxScore returns the highest score a single performance can reach.
func (s *RelativeScorer) MaxScore() int {
	return s.baseScore
}

// Score fills in the Score of every performance. The fastest time is derived
// per (event, category) group from the performances themselves, so callers
// must pass the complete course field, not a single athlete's runs.
// Performances without a positive time keep a zero score.
func (s *RelativeScorer) Score(perfs []Performance) []Performance {
	type course struct {
		eventID  int64
		category string
	}

	fastest := make(map[course]int)
	for _, p := range perfs {
		if p.Seconds <= 0 {
			continue
		}
		key := course{p.EventID, p.CategoryName}
		if best, ok := fastest[key]; !ok || p.Seconds < best {
			fastest[key] = p.Seconds
		}
	}

	scored := make([]Performance, len(perfs))
	for i, p := range perfs {
		if p.Seconds > 0 {
			p.Score = s.baseScore * fastest[course{p.EventID, p.CategoryName}] / p.Seconds
		}
		scored[i] = p
	}
	return scored
}
