// Package scoring derives an aggregate score from a session's answer map.
// It deliberately never re-checks answers: correctness was fixed at
// confirmation time and is taken as given here.
package scoring

import "math"

// Item is the minimal view of an item needed for scoring.
type Item struct {
	Weight float64 // 0 means default 1
}

// Summary is the outcome of scoring one session.
type Summary struct {
	CorrectPoints float64 `json:"correct_points"`
	TotalPoints   float64 `json:"total_points"`
	Percentage    int     `json:"percentage"`
	// Passed is only present when a passing threshold was configured;
	// without one the caller must not render pass/fail at all.
	Passed *bool `json:"passed,omitempty"`
}

type Option func(*config)

type config struct {
	passingScore int // percentage threshold; <0 means none
}

// WithPassingScore enables pass/fail at the given percentage threshold.
func WithPassingScore(pct int) Option {
	return func(c *config) { c.passingScore = pct }
}

// Score aggregates points. correct maps item index to the recorded
// correctness flag; indexes absent from the map are unanswered and
// contribute zero while still counting toward the total. That is the
// documented policy for sessions ended early by timer expiry or an
// incomplete manual submit.
func Score(items []Item, correct map[int]bool, opts ...Option) Summary {
	cfg := &config{passingScore: -1}
	for _, o := range opts {
		o(cfg)
	}

	var earned, total float64
	for i, it := range items {
		w := it.Weight
		if w <= 0 {
			w = 1
		}
		total += w
		if correct[i] {
			earned += w
		}
	}

	s := Summary{CorrectPoints: earned, TotalPoints: total}
	if total > 0 {
		s.Percentage = int(math.Round(100 * earned / total))
	}
	if cfg.passingScore >= 0 {
		passed := s.Percentage >= cfg.passingScore
		s.Passed = &passed
	}
	return s
}
