package quizstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memoryStore backs tests and the zero-config dev server.
type memoryStore struct {
	mu      sync.RWMutex
	quizzes map[string]Quiz
	results []Result
}

func NewInMemoryStore() Store {
	return &memoryStore{quizzes: map[string]Quiz{}}
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	return q, nil
}

func (m *memoryStore) ListQuizzes(_ context.Context, opts ListOpts) ([]QuizSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]QuizSummary, 0, len(m.quizzes))
	for _, q := range m.quizzes {
		out = append(out, QuizSummary{
			ID: q.ID, Title: q.Title, Kind: q.Kind,
			ItemCount: len(q.Items), CreatedAt: q.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return page(out, opts), nil
}

func (m *memoryStore) PutResult(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.CompletedAt == 0 {
		r.CompletedAt = time.Now().Unix()
	}
	m.results = append(m.results, r)
	return nil
}

func (m *memoryStore) ListResults(_ context.Context, quizID string, opts ListOpts) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Result{}
	for _, r := range m.results {
		if quizID == "" || r.QuizID == quizID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt > out[j].CompletedAt })
	return page(out, opts), nil
}

func page[T any](in []T, opts ListOpts) []T {
	limit, offset := clampList(opts)
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if len(in) > limit {
		in = in[:limit]
	}
	return in
}
