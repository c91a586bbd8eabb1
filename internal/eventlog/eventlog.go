// Package eventlog is an append-only record of notable engine events,
// kept for the site's analytics jobs to tail.
package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	TypeQuizCreated      = "QuizCreated"
	TypeSessionCompleted = "SessionCompleted"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string // natural key: quiz or session id
	DataJSON  string
	CreatedAt int64
}

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Append(ctx context.Context, typ, key string, data interface{}) error {
	if r == nil || r.db == nil {
		return nil
	}
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
	return err
}
