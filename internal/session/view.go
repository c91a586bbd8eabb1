package session

import (
	"github.com/quizmill/quizmill/internal/payload"
	"github.com/quizmill/quizmill/internal/scoring"
)

// OptionView is an option as the player may see it right now. Correct is
// a pointer so exam mode can withhold the answer key until the item is
// answered; pre-reveal views carry no correctness flags at all.
type OptionView struct {
	Label   string `json:"label"`
	Body    string `json:"body"`
	Correct *bool  `json:"correct,omitempty"`
}

type ItemView struct {
	Prompt      string       `json:"prompt,omitempty"`
	Options     []OptionView `json:"options,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
	Difficulty  string       `json:"difficulty,omitempty"`

	Front string `json:"front,omitempty"`
	Back  string `json:"back,omitempty"`
	Hint  string `json:"hint,omitempty"`
}

// View is the read-only derived state handed to the rendering layer
// after every intent.
type View struct {
	Title    string       `json:"title"`
	Kind     payload.Kind `json:"kind"`
	Mode     Mode         `json:"mode"`
	Phase    Phase        `json:"phase"`
	Index    int          `json:"index"`
	Total    int          `json:"total"`
	Answered int          `json:"answered"`
	Progress float64      `json:"progress"`

	Item          ItemView `json:"item"`
	Selected      *int     `json:"selected,omitempty"`
	ItemAnswered  bool     `json:"item_answered"`
	ItemCorrect   *bool    `json:"item_correct,omitempty"`
	CorrectOption *int     `json:"correct_option,omitempty"`

	CanSelect  bool `json:"can_select"`
	CanConfirm bool `json:"can_confirm"`
	CanAdvance bool `json:"can_advance"`
	CanRetreat bool `json:"can_retreat"`

	Score *scoring.Summary `json:"score,omitempty"`
}

// View derives the current view-state. It is the only read surface the
// rendering layer needs; keyboard and pointer intents both funnel into
// the same transitions and read back through here.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	answered := len(s.answers)
	v := View{
		Title:    s.title,
		Kind:     s.kind,
		Mode:     s.mode,
		Phase:    s.phase,
		Index:    s.index,
		Total:    len(s.items),
		Answered: answered,
		Progress: float64(answered) / float64(len(s.items)),
	}

	it := s.items[s.index]
	ans, done := s.answers[s.index]
	reveal := done || s.phase == PhaseReviewing

	v.Item = ItemView{
		Prompt:     it.Prompt,
		Difficulty: it.Difficulty,
		Front:      it.Front,
		Hint:       it.Hint,
	}
	if reveal {
		v.Item.Explanation = it.Explanation
		v.Item.Back = it.Back
	}
	for _, o := range it.Options {
		ov := OptionView{Label: o.Label, Body: o.Body}
		if reveal {
			c := o.Correct
			ov.Correct = &c
		}
		v.Item.Options = append(v.Item.Options, ov)
	}

	if s.selected != noSelection {
		sel := s.selected
		v.Selected = &sel
	}
	v.ItemAnswered = done
	if done && ans.Option != noSelection {
		c := ans.Correct
		v.ItemCorrect = &c
	}
	if reveal {
		if co := it.CorrectOption(); co >= 0 {
			v.CorrectOption = &co
		}
	}

	switch s.phase {
	case PhaseInProgress:
		v.CanSelect = !done
		v.CanConfirm = s.mode == ModeExam && !done && s.selected != noSelection
		if done {
			v.CanAdvance = s.index < len(s.items)-1 || answered == len(s.items)
		}
		v.CanRetreat = s.index > 0
	case PhaseReviewing:
		v.CanAdvance = s.index < len(s.items)-1
		v.CanRetreat = s.index > 0
	}

	if s.phase == PhaseCompleted || s.phase == PhaseReviewing {
		if s.kind != payload.KindFlashcards {
			sc := s.scoreLocked()
			v.Score = &sc
		}
	}
	return v
}
