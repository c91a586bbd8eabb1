// Package review reconstructs a read-only walkthrough of a completed
// session. It never re-runs scoring: every entry carries the correctness
// flag recorded at confirmation time, so the review can never disagree
// with the score the user was already shown.
package review

import (
	"github.com/quizmill/quizmill/internal/payload"
	"github.com/quizmill/quizmill/internal/session"
)

// Entry is one item's replay: what was picked, whether it was correct,
// and what the right option actually was.
type Entry struct {
	Index    int    `json:"index"`
	Prompt   string `json:"prompt,omitempty"`
	Front    string `json:"front,omitempty"`
	Back     string `json:"back,omitempty"`
	Answered bool   `json:"answered"`
	Selected *int   `json:"selected,omitempty"`
	Correct  bool   `json:"correct"`
	// CorrectOption is -1 when the item has no option marked correct
	// (a content defect; no selection could ever have been correct).
	CorrectOption int    `json:"correct_option"`
	Explanation   string `json:"explanation,omitempty"`
}

// Reconstruct builds the replay table for a session's frozen items and
// recorded answers. Items the timer cut off appear with Answered=false.
func Reconstruct(items []payload.Item, answers map[int]session.Answer) []Entry {
	out := make([]Entry, len(items))
	for i, it := range items {
		e := Entry{
			Index:         i,
			Prompt:        it.Prompt,
			Front:         it.Front,
			Back:          it.Back,
			CorrectOption: it.CorrectOption(),
			Explanation:   it.Explanation,
		}
		if a, ok := answers[i]; ok {
			e.Answered = true
			e.Correct = a.Correct
			if a.Option >= 0 {
				sel := a.Option
				e.Selected = &sel
			}
		}
		out[i] = e
	}
	return out
}
