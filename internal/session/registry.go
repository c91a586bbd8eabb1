package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quizmill/quizmill/internal/timer"
)

// Managed pairs a live session with its optional countdown. Tag carries
// the originating quiz id when the session came from the catalog.
type Managed struct {
	Session *Session
	Timer   *timer.Controller // nil when the session has no time limit
	Tag     string

	lastSeen time.Time
}

// Registry owns every live session in the process. Each session is still
// driven by exactly one player; the registry only hands it out by id and
// evicts the ones whose player went away without saying goodbye.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Managed
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

const sweepInterval = time.Minute

// NewRegistry creates a registry whose janitor evicts sessions idle for
// longer than ttl. A non-positive ttl disables eviction.
func NewRegistry(ttl time.Duration) *Registry {
	r := &Registry{
		sessions: map[string]*Managed{},
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	if ttl > 0 {
		go r.sweep()
	}
	return r
}

func (r *Registry) sweep() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-r.stop:
			return
		case now := <-t.C:
			r.mu.Lock()
			for id, m := range r.sessions {
				if now.Sub(m.lastSeen) > r.ttl {
					m.Timer.Stop()
					delete(r.sessions, id)
				}
			}
			r.mu.Unlock()
		}
	}
}

// Put registers a session and returns its id.
func (r *Registry) Put(s *Session, t *timer.Controller, tag string) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = &Managed{Session: s, Timer: t, Tag: tag, lastSeen: time.Now()}
	r.mu.Unlock()
	return id
}

// Get returns the managed session and refreshes its idle clock.
func (r *Registry) Get(id string) (*Managed, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.sessions[id]
	if ok {
		m.lastSeen = time.Now()
	}
	return m, ok
}

// Delete removes a session, stopping its timer.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.sessions[id]; ok {
		m.Timer.Stop()
		delete(r.sessions, id)
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the janitor and every session timer.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.sessions {
		m.Timer.Stop()
		delete(r.sessions, id)
	}
}
