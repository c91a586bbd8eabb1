package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizmill/quizmill/internal/eventlog"
	"github.com/quizmill/quizmill/internal/payload"
	"github.com/quizmill/quizmill/internal/quizstore"
	"github.com/quizmill/quizmill/internal/rbac"
)

type uploadQuizReq struct {
	Title        string         `json:"title"`
	Kind         payload.Kind   `json:"kind,omitempty"`
	Items        []payload.Item `json:"items"`
	TimeLimitMin int            `json:"time_limit_min,omitempty"`
	PassingScore *int           `json:"passing_score,omitempty"`
}

// UploadQuizHandler stores a catalog quiz. The payload shape rules are
// the codec's: whatever cannot round-trip through an embed token is not
// accepted into the catalog either.
func UploadQuizHandler(store quizstore.Store, events *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req uploadQuizReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		kind := req.Kind
		if kind == "" {
			kind = payload.KindQuiz
		}
		if err := validateInline(payload.EmbedPayload{Title: req.Title, Kind: kind, Items: req.Items}); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		passing := -1
		if req.PassingScore != nil {
			passing = *req.PassingScore
		}
		q := quizstore.Quiz{
			ID:           uuid.NewString(),
			Title:        req.Title,
			Kind:         kind,
			Items:        req.Items,
			TimeLimitMin: req.TimeLimitMin,
			PassingScore: passing,
			CreatedBy:    rbac.SubjectFromContext(r.Context()),
		}
		if err := store.PutQuiz(r.Context(), q); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if events != nil {
			if err := events.Append(r.Context(), eventlog.TypeQuizCreated, q.ID,
				map[string]interface{}{"title": q.Title, "items": len(q.Items)}); err != nil {
				log.Printf("event log: %v", err)
			}
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(q)
	}
}

func GetQuizHandler(store quizstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		q, err := store.GetQuiz(r.Context(), id)
		if err != nil {
			if errors.Is(err, quizstore.ErrNotFound) {
				http.Error(w, "quiz not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(q)
	}
}

func ListQuizzesHandler(store quizstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListQuizzes(r.Context(), listOpts(r))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

func ListResultsHandler(store quizstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListResults(r.Context(), r.URL.Query().Get("quiz_id"), listOpts(r))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

func listOpts(r *http.Request) quizstore.ListOpts {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return quizstore.ListOpts{Limit: limit, Offset: offset}
}
