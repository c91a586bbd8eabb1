package session_test

import (
	"testing"
	"time"

	"github.com/quizmill/quizmill/internal/payload"
	"github.com/quizmill/quizmill/internal/session"
	"github.com/quizmill/quizmill/internal/timer"
)

func TestRegistryPutGetDelete(t *testing.T) {
	r := session.NewRegistry(time.Hour)
	defer r.Close()

	s, _ := session.New("t", payload.KindQuiz, threeItems())
	id := r.Put(s, nil, "quiz-1")
	if id == "" {
		t.Fatalf("empty id")
	}

	m, ok := r.Get(id)
	if !ok || m.Session != s || m.Tag != "quiz-1" {
		t.Fatalf("lookup failed: ok=%v", ok)
	}
	if _, ok := r.Get("no-such-id"); ok {
		t.Fatalf("found unknown id")
	}

	r.Delete(id)
	if _, ok := r.Get(id); ok {
		t.Fatalf("deleted session still reachable")
	}
	r.Delete(id) // idempotent
}

func TestRegistryCloseStopsTimers(t *testing.T) {
	r := session.NewRegistry(time.Hour)

	expired := make(chan struct{}, 1)
	c := timer.New(1, func() { expired <- struct{}{} }, timer.WithInterval(5*time.Millisecond))
	s, _ := session.New("t", payload.KindQuiz, threeItems())
	r.Put(s, c, "")
	c.Start()

	r.Close()
	if r.Len() != 0 {
		t.Fatalf("sessions remain after close: %d", r.Len())
	}
	select {
	case <-expired:
		t.Fatalf("timer fired after registry close")
	case <-time.After(100 * time.Millisecond):
	}
	r.Close() // idempotent
}
