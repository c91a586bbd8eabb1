// Package quizstore persists the quiz catalog the in-site player serves
// from, and the results of completed sessions. Embedded players never
// touch it; their payload travels in the URL fragment.
package quizstore

import (
	"context"

	"github.com/quizmill/quizmill/internal/payload"
)

// Quiz is a catalog entry: a stored payload plus the session settings
// that never travel inside an embed token.
type Quiz struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Kind         payload.Kind   `json:"kind"`
	Items        []payload.Item `json:"items"`
	TimeLimitMin int            `json:"time_limit_min"`
	PassingScore int            `json:"passing_score"` // percentage; -1 means none
	CreatedBy    string         `json:"created_by,omitempty"`
	CreatedAt    int64          `json:"created_at,omitempty"`
}

// QuizSummary is the list view; items stay behind the detail fetch.
type QuizSummary struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Kind      payload.Kind `json:"kind"`
	ItemCount int          `json:"item_count"`
	CreatedAt int64        `json:"created_at"`
}

// Result is one completed session's outcome, recorded once at
// completion.
type Result struct {
	ID            string  `json:"id"`
	QuizID        string  `json:"quiz_id,omitempty"`
	Title         string  `json:"title"`
	Mode          string  `json:"mode"`
	CorrectPoints float64 `json:"correct_points"`
	TotalPoints   float64 `json:"total_points"`
	Percentage    int     `json:"percentage"`
	Passed        *bool   `json:"passed,omitempty"`
	Answered      int     `json:"answered"`
	TotalItems    int     `json:"total_items"`
	CompletedAt   int64   `json:"completed_at"`
}

type ListOpts struct {
	Limit  int
	Offset int
}

type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	ListQuizzes(ctx context.Context, opts ListOpts) ([]QuizSummary, error)

	PutResult(ctx context.Context, r Result) error
	ListResults(ctx context.Context, quizID string, opts ListOpts) ([]Result, error)
}
