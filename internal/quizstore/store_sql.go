package quizstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/quizmill/quizmill/internal/payload"
)

var ErrNotFound = errors.New("quiz not found")

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	ij, err := json.Marshal(q.Items)
	if err != nil {
		return err
	}
	created := q.CreatedAt
	if created == 0 {
		created = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id,title,kind,items_json,time_limit_min,passing_score,created_by,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, kind=EXCLUDED.kind,
		   items_json=EXCLUDED.items_json, time_limit_min=EXCLUDED.time_limit_min,
		   passing_score=EXCLUDED.passing_score`,
		q.ID, q.Title, string(q.Kind), string(ij), q.TimeLimitMin, q.PassingScore, q.CreatedBy, created)
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,kind,items_json,time_limit_min,passing_score,created_by,created_at
		 FROM quizzes WHERE id=$1`, id)
	var q Quiz
	var kind, ijson string
	if err := row.Scan(&q.ID, &q.Title, &kind, &ijson, &q.TimeLimitMin, &q.PassingScore, &q.CreatedBy, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrNotFound
		}
		return Quiz{}, err
	}
	q.Kind = kindOf(kind)
	if err := json.Unmarshal([]byte(ijson), &q.Items); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context, opts ListOpts) ([]QuizSummary, error) {
	limit, offset := clampList(opts)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,kind,items_json,created_at FROM quizzes
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuizSummary{}
	for rows.Next() {
		var sum QuizSummary
		var kind, ijson string
		if err := rows.Scan(&sum.ID, &sum.Title, &kind, &ijson, &sum.CreatedAt); err != nil {
			return nil, err
		}
		sum.Kind = kindOf(kind)
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(ijson), &items); err == nil {
			sum.ItemCount = len(items)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutResult(ctx context.Context, r Result) error {
	completed := r.CompletedAt
	if completed == 0 {
		completed = time.Now().Unix()
	}
	var passed interface{}
	if r.Passed != nil {
		passed = *r.Passed
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (id,quiz_id,title,mode,correct_points,total_points,percentage,passed,answered,total_items,completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		r.ID, r.QuizID, r.Title, r.Mode, r.CorrectPoints, r.TotalPoints, r.Percentage, passed, r.Answered, r.TotalItems, completed)
	return err
}

func (s *SQLStore) ListResults(ctx context.Context, quizID string, opts ListOpts) ([]Result, error) {
	limit, offset := clampList(opts)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,quiz_id,title,mode,correct_points,total_points,percentage,passed,answered,total_items,completed_at
		 FROM results WHERE ($1='' OR quiz_id=$1)
		 ORDER BY completed_at DESC LIMIT $2 OFFSET $3`, quizID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		var r Result
		var passed sql.NullBool
		if err := rows.Scan(&r.ID, &r.QuizID, &r.Title, &r.Mode, &r.CorrectPoints, &r.TotalPoints,
			&r.Percentage, &passed, &r.Answered, &r.TotalItems, &r.CompletedAt); err != nil {
			return nil, err
		}
		if passed.Valid {
			p := passed.Bool
			r.Passed = &p
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func kindOf(s string) payload.Kind {
	if s == string(payload.KindFlashcards) {
		return payload.KindFlashcards
	}
	return payload.KindQuiz
}

func clampList(opts ListOpts) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset = opts.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
