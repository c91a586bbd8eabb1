package session_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/quizmill/quizmill/internal/payload"
	"github.com/quizmill/quizmill/internal/session"
	"github.com/quizmill/quizmill/internal/timer"
)

func mcq(prompt string, correct int, n int) payload.Item {
	it := payload.Item{Prompt: prompt}
	for i := 0; i < n; i++ {
		it.Options = append(it.Options, payload.Option{
			Label:   string(rune('A' + i)),
			Body:    prompt + "-opt",
			Correct: i == correct,
		})
	}
	return it
}

func threeItems() []payload.Item {
	return []payload.Item{mcq("q1", 0, 3), mcq("q2", 1, 3), mcq("q3", 2, 3)}
}

func TestNewRejectsEmptyItems(t *testing.T) {
	if _, err := session.New("t", payload.KindQuiz, nil); err == nil {
		t.Fatalf("expected error for empty item list")
	}
}

func TestExamFlow(t *testing.T) {
	s, err := session.New("Demo", payload.KindQuiz, []payload.Item{mcq("2+2?", 1, 2)})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// selection alone records nothing in exam mode
	s.Select(1)
	if v := s.View(); v.ItemAnswered {
		t.Fatalf("answered before confirm")
	}

	s.Confirm()
	v := s.View()
	if !v.ItemAnswered || v.ItemCorrect == nil || !*v.ItemCorrect {
		t.Fatalf("expected correct answer recorded, view %+v", v)
	}

	// still in progress until advance past the last item
	if s.Phase() != session.PhaseInProgress {
		t.Fatalf("phase = %q before final advance", s.Phase())
	}
	s.Advance()
	if s.Phase() != session.PhaseCompleted {
		t.Fatalf("phase = %q, want completed", s.Phase())
	}

	sc := s.Score()
	if sc.CorrectPoints != 1 || sc.TotalPoints != 1 || sc.Percentage != 100 {
		t.Fatalf("score = %+v", sc)
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	s, _ := session.New("t", payload.KindQuiz, threeItems())
	s.Select(0) // correct for q1
	s.Confirm()
	first := s.Answers()[0]

	// duplicate dispatch: select a different option, confirm again
	s.Select(2)
	s.Confirm()
	s.Confirm()
	if got := s.Answers()[0]; got != first {
		t.Fatalf("answer changed on re-confirm: %+v -> %+v", first, got)
	}
	if sc := s.Score(); sc.CorrectPoints != 1 {
		t.Fatalf("double-counted: %+v", sc)
	}
}

func TestConfirmWithoutSelectionIsNoOp(t *testing.T) {
	s, _ := session.New("t", payload.KindQuiz, threeItems())
	s.Confirm()
	if len(s.Answers()) != 0 {
		t.Fatalf("confirm without selection recorded an answer")
	}
}

func TestAdvanceRequiresAnswer(t *testing.T) {
	s, _ := session.New("t", payload.KindQuiz, threeItems())
	s.Advance()
	if v := s.View(); v.Index != 0 {
		t.Fatalf("advanced past unanswered item, index %d", v.Index)
	}
}

func TestAdvancePastEndIsNoOp(t *testing.T) {
	s, _ := session.New("t", payload.KindQuiz, threeItems())
	s.Select(0)
	s.Confirm()
	s.Advance()
	s.Select(1)
	s.Confirm()
	s.Advance() // now at last item, unanswered
	s.Advance() // must not complete: item 3 unanswered
	if s.Phase() != session.PhaseInProgress {
		t.Fatalf("completed with unanswered items")
	}
	if v := s.View(); v.Index != 2 {
		t.Fatalf("index = %d, want 2", v.Index)
	}
}

func TestRetreatRestoresSelection(t *testing.T) {
	s, _ := session.New("t", payload.KindQuiz, threeItems())
	s.Select(2)
	s.Confirm()
	s.Advance()
	s.Retreat()
	v := s.View()
	if v.Selected == nil || *v.Selected != 2 {
		t.Fatalf("selection not restored: %+v", v.Selected)
	}
	if v.ItemCorrect == nil {
		t.Fatalf("answered item should reveal correctness after retreat")
	}
	// retreat at the first item clamps
	s.Retreat()
	if v := s.View(); v.Index != 0 {
		t.Fatalf("index = %d, want 0", v.Index)
	}
}

func TestPracticeModeRevealsAtSelection(t *testing.T) {
	s, _ := session.New("t", payload.KindQuiz, threeItems(), session.WithMode(session.ModePractice))
	s.Select(1) // wrong for q1
	v := s.View()
	if !v.ItemAnswered {
		t.Fatalf("practice selection did not record")
	}
	if v.ItemCorrect == nil || *v.ItemCorrect {
		t.Fatalf("expected incorrect reveal, view %+v", v)
	}
	// answer is one-shot: re-selecting must not rewrite it
	s.Select(0)
	if got := s.Answers()[0].Option; got != 1 {
		t.Fatalf("practice answer rewritten to %d", got)
	}
}

func TestExpireScoresUnansweredAsZero(t *testing.T) {
	// 3-item session, user answers items 1 and 2, timer expires before 3
	s, _ := session.New("t", payload.KindQuiz, threeItems())
	s.Select(0)
	s.Confirm()
	s.Advance()
	s.Select(1)
	s.Confirm()

	s.Expire()
	if s.Phase() != session.PhaseCompleted {
		t.Fatalf("phase = %q after expire", s.Phase())
	}
	sc := s.Score()
	if sc.TotalPoints != 3 {
		t.Fatalf("total = %v, want 3", sc.TotalPoints)
	}
	if sc.CorrectPoints != 2 {
		t.Fatalf("correct = %v, want 2", sc.CorrectPoints)
	}
	if len(s.Answers()) != 2 {
		t.Fatalf("answers = %d, want 2 (item 3 absent)", len(s.Answers()))
	}
	// idempotent
	s.Expire()
	if s.Phase() != session.PhaseCompleted {
		t.Fatalf("second expire changed phase")
	}
}

func TestTimerForcesCompletion(t *testing.T) {
	s, _ := session.New("t", payload.KindQuiz, threeItems())
	c := timer.New(1, s.Expire, timer.WithInterval(time.Millisecond))
	c.Start()
	defer c.Stop()

	deadline := time.After(2 * time.Second)
	for s.Phase() != session.PhaseCompleted {
		select {
		case <-deadline:
			t.Fatalf("session never completed")
		case <-time.After(5 * time.Millisecond):
		}
	}
	sc := s.Score()
	if sc.CorrectPoints != 0 || sc.TotalPoints != 3 {
		t.Fatalf("score = %+v, want all unanswered", sc)
	}
}

func TestReviewWalk(t *testing.T) {
	s, _ := session.New("t", payload.KindQuiz, threeItems())
	s.EnterReview() // not completed: no-op
	if s.Phase() != session.PhaseInProgress {
		t.Fatalf("entered review from in_progress")
	}

	answerAll(s)
	if s.Phase() != session.PhaseCompleted {
		t.Fatalf("setup: phase %q", s.Phase())
	}

	s.EnterReview()
	if s.Phase() != session.PhaseReviewing {
		t.Fatalf("phase = %q", s.Phase())
	}
	// answers are frozen while reviewing
	s.Select(0)
	s.Confirm()
	if sc := s.Score(); sc.CorrectPoints != 2 {
		t.Fatalf("review mutated score: %+v", sc)
	}
	// navigation is free in review
	s.Advance()
	s.Advance()
	s.Advance() // clamped
	if v := s.View(); v.Index != 2 {
		t.Fatalf("index = %d, want 2", v.Index)
	}
	s.ExitReview()
	if s.Phase() != session.PhaseCompleted {
		t.Fatalf("phase = %q after exit", s.Phase())
	}
}

// answerAll answers q1 and q2 correctly, q3 wrong, then completes.
func answerAll(s *session.Session) {
	s.Select(0)
	s.Confirm()
	s.Advance()
	s.Select(1)
	s.Confirm()
	s.Advance()
	s.Select(0) // wrong: q3's correct option is 2
	s.Confirm()
	s.Advance()
}

func TestRestartClearsAnswers(t *testing.T) {
	s, _ := session.New("t", payload.KindQuiz, threeItems())
	s.Restart() // only valid from a finished session
	if len(s.Answers()) != 0 || s.Phase() != session.PhaseInProgress {
		t.Fatalf("restart from in_progress should be a no-op")
	}

	answerAll(s)
	s.Restart()
	if s.Phase() != session.PhaseInProgress {
		t.Fatalf("phase = %q after restart", s.Phase())
	}
	v := s.View()
	if v.Index != 0 || v.Answered != 0 || v.Selected != nil {
		t.Fatalf("restart left state behind: %+v", v)
	}
}

func TestShuffleIsStableWithinRun(t *testing.T) {
	items := []payload.Item{mcq("q1", 0, 2), mcq("q2", 0, 2), mcq("q3", 0, 2), mcq("q4", 0, 2)}
	s, _ := session.New("t", payload.KindQuiz, items,
		session.WithShuffle(), session.WithRand(rand.New(rand.NewSource(42))))

	first := prompts(s.Items())
	// the order is fixed for the session's lifetime
	if got := prompts(s.Items()); !equal(got, first) {
		t.Fatalf("item order changed mid-session")
	}
}

func TestRestartReshuffles(t *testing.T) {
	items := []payload.Item{}
	for i := 0; i < 8; i++ {
		items = append(items, mcq(string(rune('a'+i)), 0, 2))
	}
	s, _ := session.New("t", payload.KindQuiz, items,
		session.WithShuffle(), session.WithRand(rand.New(rand.NewSource(1))))
	first := prompts(s.Items())

	for range items {
		s.Select(0)
		s.Confirm()
		s.Advance()
	}
	s.Restart()
	second := prompts(s.Items())
	if equal(first, second) {
		t.Fatalf("restart did not reshuffle (8 items, same order twice)")
	}
}

func TestViewHidesAnswerKeyInExamMode(t *testing.T) {
	s, _ := session.New("t", payload.KindQuiz, []payload.Item{
		{Prompt: "q", Explanation: "because", Options: []payload.Option{
			{Label: "A", Body: "1"}, {Label: "B", Body: "2", Correct: true},
		}},
	})
	v := s.View()
	for _, o := range v.Item.Options {
		if o.Correct != nil {
			t.Fatalf("answer key leaked before confirm")
		}
	}
	if v.Item.Explanation != "" || v.CorrectOption != nil {
		t.Fatalf("explanation or key leaked before confirm: %+v", v)
	}

	s.Select(0)
	s.Confirm()
	v = s.View()
	if v.Item.Options[1].Correct == nil || !*v.Item.Options[1].Correct {
		t.Fatalf("answer key not revealed after confirm")
	}
	if v.Item.Explanation != "because" {
		t.Fatalf("explanation not revealed after confirm")
	}
	if v.CorrectOption == nil || *v.CorrectOption != 1 {
		t.Fatalf("correct option not revealed: %+v", v.CorrectOption)
	}
}

func TestContentDefectNeverCorrect(t *testing.T) {
	// no option marked correct: tolerated, never crashes, never scores
	defect := payload.Item{Prompt: "q", Options: []payload.Option{
		{Label: "A", Body: "1"}, {Label: "B", Body: "2"},
	}}
	s, _ := session.New("t", payload.KindQuiz, []payload.Item{defect})
	s.Select(0)
	s.Confirm()
	s.Advance()
	sc := s.Score()
	if sc.CorrectPoints != 0 || sc.TotalPoints != 1 {
		t.Fatalf("defect item scored: %+v", sc)
	}
}

func TestFlashcards(t *testing.T) {
	cards := []payload.Item{
		{Front: "hola", Back: "hello", Hint: "greeting"},
		{Front: "adiós", Back: "goodbye"},
	}
	s, _ := session.New("Spanish", payload.KindFlashcards, cards,
		session.WithMode(session.ModeExam)) // forced back to practice
	if s.Mode() != session.ModePractice {
		t.Fatalf("flashcards must run in practice mode, got %q", s.Mode())
	}

	v := s.View()
	if v.Item.Back != "" {
		t.Fatalf("back revealed before flip")
	}
	s.Advance() // unseen card: no-op
	if s.View().Index != 0 {
		t.Fatalf("advanced past unflipped card")
	}

	s.Flip()
	v = s.View()
	if v.Item.Back != "hello" {
		t.Fatalf("back not revealed after flip: %+v", v.Item)
	}
	s.Flip() // idempotent
	s.Advance()
	s.Flip()
	s.Advance()
	if s.Phase() != session.PhaseCompleted {
		t.Fatalf("phase = %q after last card", s.Phase())
	}
	if v := s.View(); v.Score != nil {
		t.Fatalf("flashcard sessions have no score, got %+v", v.Score)
	}
}

func TestProgressFraction(t *testing.T) {
	s, _ := session.New("t", payload.KindQuiz, threeItems())
	if v := s.View(); v.Progress != 0 {
		t.Fatalf("progress = %v, want 0", v.Progress)
	}
	s.Select(0)
	s.Confirm()
	if v := s.View(); v.Progress < 0.33 || v.Progress > 0.34 {
		t.Fatalf("progress = %v, want ~1/3", v.Progress)
	}
}

func prompts(items []payload.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Prompt
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
