package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizmill/quizmill/internal/eventlog"
	"github.com/quizmill/quizmill/internal/payload"
	"github.com/quizmill/quizmill/internal/quizstore"
	"github.com/quizmill/quizmill/internal/review"
	"github.com/quizmill/quizmill/internal/session"
	"github.com/quizmill/quizmill/internal/timer"
)

// Sessions bundles what the player routes need: the live registry plus
// the stores a completed run is recorded into.
type Sessions struct {
	Registry *session.Registry
	Store    quizstore.Store // may be nil (pure embed deployments)
	Events   *eventlog.Repo  // may be nil
}

type createSessionReq struct {
	QuizID string `json:"quiz_id,omitempty"`
	// Inline payload, for embed pages that already decoded their
	// fragment and want server-assisted play.
	Payload *payload.EmbedPayload `json:"payload,omitempty"`

	Mode         string `json:"mode,omitempty"` // practice|exam
	Shuffle      bool   `json:"shuffle,omitempty"`
	TimeLimitMin int    `json:"time_limit_min,omitempty"`
	PassingScore *int   `json:"passing_score,omitempty"`
}

// Remaining is -1 for sessions with no timer; 0 means expired.
type sessionResp struct {
	SessionID string       `json:"session_id"`
	Remaining int          `json:"remaining_sec"`
	View      session.View `json:"view"`
}

// CreateSessionHandler mounts a session from a stored quiz or an inline
// payload. Quiz settings (time limit, passing score) apply unless the
// request overrides them.
func (h *Sessions) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		var (
			title  string
			kind   payload.Kind
			items  []payload.Item
			quizID string
		)
		switch {
		case req.QuizID != "":
			if h.Store == nil {
				http.Error(w, "no quiz catalog configured", http.StatusNotFound)
				return
			}
			q, err := h.Store.GetQuiz(r.Context(), req.QuizID)
			if err != nil {
				if errors.Is(err, quizstore.ErrNotFound) {
					http.Error(w, "quiz not found", http.StatusNotFound)
					return
				}
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			title, kind, items, quizID = q.Title, q.Kind, q.Items, q.ID
			if req.TimeLimitMin == 0 {
				req.TimeLimitMin = q.TimeLimitMin
			}
			if req.PassingScore == nil && q.PassingScore >= 0 {
				ps := q.PassingScore
				req.PassingScore = &ps
			}
		case req.Payload != nil:
			p := *req.Payload
			if err := validateInline(p); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			title, kind, items = p.Title, p.Kind, p.Items
			if kind == "" {
				kind = payload.KindQuiz
			}
		default:
			http.Error(w, "quiz_id or payload required", http.StatusBadRequest)
			return
		}

		opts := []session.Option{}
		if req.Mode == string(session.ModePractice) {
			opts = append(opts, session.WithMode(session.ModePractice))
		}
		if req.Shuffle {
			opts = append(opts, session.WithShuffle())
		}
		if req.PassingScore != nil {
			opts = append(opts, session.WithPassingScore(*req.PassingScore))
		}

		sess, err := session.New(title, kind, items, opts...)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		t := timer.New(req.TimeLimitMin, func() {
			sess.Expire()
			h.recordCompletion(context.Background(), sess, quizID)
		})
		id := h.Registry.Put(sess, t, quizID)
		t.Start()

		_ = json.NewEncoder(w).Encode(sessionResp{
			SessionID: id,
			Remaining: t.Remaining(),
			View:      sess.View(),
		})
	}
}

// validateInline applies the same shape rules the codec enforces on
// decode, so locally posted payloads get no free pass.
func validateInline(p payload.EmbedPayload) error {
	tok, err := payload.Encode(p)
	if err != nil {
		return err
	}
	_, err = payload.Decode(tok)
	return err
}

// ViewHandler returns the derived view-state without applying any
// transition.
func (h *Sessions) ViewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := h.lookup(w, r)
		if !ok {
			return
		}
		_ = json.NewEncoder(w).Encode(sessionResp{
			SessionID: chi.URLParam(r, "sessionID"),
			Remaining: m.Timer.Remaining(),
			View:      m.Session.View(),
		})
	}
}

// IntentHandler applies one named transition. Pointer clicks, digit/arrow
// keys and test drivers all dispatch through this same table; there is no
// second code path into the engine.
func (h *Sessions) IntentHandler(intent string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := h.lookup(w, r)
		if !ok {
			return
		}
		sess := m.Session

		switch intent {
		case "select":
			var req struct {
				Option int `json:"option"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
			sess.Select(req.Option)
		case "confirm":
			sess.Confirm()
		case "flip":
			sess.Flip()
		case "next":
			sess.Advance()
		case "prev":
			sess.Retreat()
		case "restart":
			before := sess.Phase()
			sess.Restart()
			if before != session.PhaseInProgress && sess.Phase() == session.PhaseInProgress {
				m.Timer.Reset()
			}
		case "review":
			sess.EnterReview()
		case "results":
			sess.ExitReview()
		default:
			http.Error(w, "unknown intent", http.StatusNotFound)
			return
		}

		if sess.Phase() != session.PhaseInProgress {
			m.Timer.Stop()
		}
		h.recordCompletion(r.Context(), sess, m.Tag)

		_ = json.NewEncoder(w).Encode(sessionResp{
			SessionID: chi.URLParam(r, "sessionID"),
			Remaining: m.Timer.Remaining(),
			View:      sess.View(),
		})
	}
}

// ReviewHandler returns the full replay table for a finished session.
func (h *Sessions) ReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := h.lookup(w, r)
		if !ok {
			return
		}
		if p := m.Session.Phase(); p != session.PhaseCompleted && p != session.PhaseReviewing {
			http.Error(w, "session not completed", http.StatusConflict)
			return
		}
		entries := review.Reconstruct(m.Session.Items(), m.Session.Answers())
		_ = json.NewEncoder(w).Encode(entries)
	}
}

// DeleteHandler tears a session down explicitly (player unmount).
func (h *Sessions) DeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.Registry.Delete(chi.URLParam(r, "sessionID"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Sessions) lookup(w http.ResponseWriter, r *http.Request) (*session.Managed, bool) {
	id := chi.URLParam(r, "sessionID")
	m, ok := h.Registry.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return m, true
}

// recordCompletion writes the result row and event exactly once per run.
// Flashcard runs have no score to persist; they only leave a completion
// event behind.
func (h *Sessions) recordCompletion(ctx context.Context, sess *session.Session, quizID string) {
	if !sess.TakeCompletion() {
		return
	}
	if sess.Kind() == payload.KindFlashcards {
		if h.Events != nil {
			ev := map[string]interface{}{
				"title":       sess.Title(),
				"kind":        string(payload.KindFlashcards),
				"answered":    len(sess.Answers()),
				"total_items": len(sess.Items()),
			}
			if err := h.Events.Append(ctx, eventlog.TypeSessionCompleted, quizID, ev); err != nil {
				log.Printf("event log: %v", err)
			}
		}
		return
	}
	sc := sess.Score()
	res := quizstore.Result{
		ID:            uuid.NewString(),
		QuizID:        quizID,
		Title:         sess.Title(),
		Mode:          string(sess.Mode()),
		CorrectPoints: sc.CorrectPoints,
		TotalPoints:   sc.TotalPoints,
		Percentage:    sc.Percentage,
		Passed:        sc.Passed,
		Answered:      len(sess.Answers()),
		TotalItems:    len(sess.Items()),
	}
	if h.Store != nil {
		if err := h.Store.PutResult(ctx, res); err != nil {
			log.Printf("record result: %v", err)
		}
	}
	if h.Events != nil {
		if err := h.Events.Append(ctx, eventlog.TypeSessionCompleted, res.ID, res); err != nil {
			log.Printf("event log: %v", err)
		}
	}
}
