// Package session holds the state machine that drives one run through an
// ordered item list. Every transition is synchronous and either applies or
// is a silent no-op; nothing here panics on out-of-order events, because
// the rendering layer cannot be trusted to gate every control.
package session

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/quizmill/quizmill/internal/payload"
	"github.com/quizmill/quizmill/internal/scoring"
)

// Mode selects the feedback contract: exam requires an explicit confirm
// before correctness is revealed, practice reveals at selection time.
type Mode string

const (
	ModeExam     Mode = "exam"
	ModePractice Mode = "practice"
)

type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
	PhaseReviewing  Phase = "reviewing"
)

const noSelection = -1

// Answer records one item's outcome. Correct is computed once at
// confirmation time and never recomputed; the review view reads it back
// verbatim so it can never disagree with the score already shown.
type Answer struct {
	Option  int  `json:"option"`
	Correct bool `json:"correct"`
}

// Session is the mutable runtime entity. Items are frozen for the
// session's lifetime (shuffle happens once at start and again only on
// restart). One Session is owned by one player instance; the mutex only
// guards against the HTTP layer delivering intents concurrently.
type Session struct {
	mu sync.Mutex

	title string
	kind  payload.Kind
	items []payload.Item

	mode         Mode
	phase        Phase
	index        int
	answers      map[int]Answer
	selected     int // transient "selected but not confirmed" slot
	shuffle      bool
	rng          *rand.Rand
	passingScore int // percentage threshold; -1 means none configured

	completionTaken bool
}

type Option func(*Session)

func WithMode(m Mode) Option { return func(s *Session) { s.mode = m } }

// WithShuffle enables a one-shot shuffle of the item order at session
// start and again on restart.
func WithShuffle() Option { return func(s *Session) { s.shuffle = true } }

// WithRand overrides the shuffle source, for deterministic tests.
func WithRand(r *rand.Rand) Option { return func(s *Session) { s.rng = r } }

// WithPassingScore enables pass/fail in the session's score summary.
func WithPassingScore(pct int) Option { return func(s *Session) { s.passingScore = pct } }

// New creates a session positioned at the first item. An empty item list
// is rejected here even though the codec already refuses to decode one;
// locally constructed lists get the same guarantee.
func New(title string, kind payload.Kind, items []payload.Item, opts ...Option) (*Session, error) {
	if len(items) == 0 {
		return nil, errors.New("session needs at least one item")
	}
	s := &Session{
		title:        title,
		kind:         kind,
		items:        append([]payload.Item(nil), items...),
		mode:         ModeExam,
		phase:        PhaseInProgress,
		answers:      map[int]Answer{},
		selected:     noSelection,
		passingScore: -1,
	}
	for _, o := range opts {
		o(s)
	}
	// Flashcards have no confirm step; they are always instant-reveal.
	if kind == payload.KindFlashcards {
		s.mode = ModePractice
	}
	if s.shuffle {
		if s.rng == nil {
			s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		s.shuffleItems()
	}
	return s, nil
}

func (s *Session) shuffleItems() {
	s.rng.Shuffle(len(s.items), func(i, j int) {
		s.items[i], s.items[j] = s.items[j], s.items[i]
	})
}

// Select updates the transient selection slot for the current item. In
// practice mode selection both records the answer and reveals
// correctness. Selecting on an already-answered item is a no-op.
func (s *Session) Select(option int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress {
		return
	}
	it := s.items[s.index]
	if option < 0 || option >= len(it.Options) {
		return
	}
	if _, done := s.answers[s.index]; done {
		return
	}
	s.selected = option
	if s.mode == ModePractice {
		s.record(option)
	}
}

// Confirm writes the Answer for the current item in exam mode. It does
// not advance; the player decides when to move on so explanations can be
// shown first. Re-confirming an answered item is a no-op, which keeps UI
// re-renders and duplicate event dispatch from double-counting.
func (s *Session) Confirm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress || s.mode != ModeExam {
		return
	}
	if s.selected == noSelection {
		return
	}
	if _, done := s.answers[s.index]; done {
		return
	}
	s.record(s.selected)
}

// Flip reveals the current flashcard and marks it seen, which is what
// enables advancing past it.
func (s *Session) Flip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress || s.kind != payload.KindFlashcards {
		return
	}
	if _, done := s.answers[s.index]; done {
		return
	}
	s.answers[s.index] = Answer{Option: noSelection}
}

func (s *Session) record(option int) {
	it := s.items[s.index]
	s.answers[s.index] = Answer{
		Option:  option,
		Correct: it.CorrectOption() == option,
	}
}

// Advance moves to the next item. In progress it requires the current
// item to be answered; at the last item it completes the session once
// every item is answered and otherwise does nothing.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseInProgress:
		if _, done := s.answers[s.index]; !done {
			return
		}
		if s.index < len(s.items)-1 {
			s.index++
			s.restoreSelection()
			return
		}
		if len(s.answers) == len(s.items) {
			s.phase = PhaseCompleted
		}
	case PhaseReviewing:
		if s.index < len(s.items)-1 {
			s.index++
		}
	}
}

// Retreat moves to the previous item, clamped at the first, and restores
// the transient selection from the recorded answer so prior choices
// re-display without re-scoring.
func (s *Session) Retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress && s.phase != PhaseReviewing {
		return
	}
	if s.index > 0 {
		s.index--
		s.restoreSelection()
	}
}

func (s *Session) restoreSelection() {
	if a, ok := s.answers[s.index]; ok {
		s.selected = a.Option
	} else {
		s.selected = noSelection
	}
}

// Expire forces completion regardless of progress; unanswered items stay
// unanswered and score zero. Idempotent, so near-simultaneous timer
// callbacks cannot fire it twice.
func (s *Session) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress {
		return
	}
	s.phase = PhaseCompleted
}

// Restart clears all answers and returns to the first item, re-shuffling
// when shuffle was enabled. Only reachable from a finished session.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseCompleted && s.phase != PhaseReviewing {
		return
	}
	s.phase = PhaseInProgress
	s.index = 0
	s.answers = map[int]Answer{}
	s.selected = noSelection
	s.completionTaken = false
	if s.shuffle && s.rng != nil {
		s.shuffleItems()
	}
}

// TakeCompletion reports true exactly once per completed run, no matter
// how many callers observe the completion. Result persistence hangs off
// this so a timer expiry racing a final advance cannot record twice.
func (s *Session) TakeCompletion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseCompleted && s.phase != PhaseReviewing {
		return false
	}
	if s.completionTaken {
		return false
	}
	s.completionTaken = true
	return true
}

// EnterReview starts a read-only walk over a completed session's
// answers. Confirm and Select are disallowed by phase while reviewing.
func (s *Session) EnterReview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseCompleted {
		return
	}
	s.phase = PhaseReviewing
	s.index = 0
	s.restoreSelection()
}

// ExitReview returns from the review walk to the results screen.
func (s *Session) ExitReview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReviewing {
		return
	}
	s.phase = PhaseCompleted
}

// Score aggregates the recorded answers. Unanswered items count toward
// the total and contribute zero.
func (s *Session) Score() scoring.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked()
}

func (s *Session) scoreLocked() scoring.Summary {
	items := make([]scoring.Item, len(s.items))
	for i, it := range s.items {
		items[i] = scoring.Item{Weight: it.PointWeight()}
	}
	correct := make(map[int]bool, len(s.answers))
	for i, a := range s.answers {
		correct[i] = a.Correct
	}
	var opts []scoring.Option
	if s.passingScore >= 0 {
		opts = append(opts, scoring.WithPassingScore(s.passingScore))
	}
	return scoring.Score(items, correct, opts...)
}

// Accessors used by the review controller and result persistence. Items
// and Answers return copies; the session's own state stays frozen.

func (s *Session) Title() string      { return s.title }
func (s *Session) Kind() payload.Kind { return s.kind }

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Items() []payload.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]payload.Item(nil), s.items...)
}

func (s *Session) Answers() map[int]Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]Answer, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}
