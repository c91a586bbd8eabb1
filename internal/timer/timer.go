// Package timer implements the optional countdown that can force a
// session to complete with no user interaction. A session without a
// configured duration simply has no Controller at all; absence is a nil
// pointer, not a timer frozen at infinity.
package timer

import (
	"sync"
	"time"
)

// Controller counts down from a whole-minute duration, ticking once per
// second, and invokes the expiry callback exactly once at zero. There is
// no pause; the session is continuous.
type Controller struct {
	mu        sync.Mutex
	total     int // seconds
	remaining int
	interval  time.Duration
	onExpire  func()
	stop      chan struct{}
	running   bool
	expired   bool
}

type Option func(*Controller)

// WithInterval overrides the one-second tick, for tests.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// New builds a stopped controller for the given duration in whole
// minutes. Returns nil when minutes is not positive: no duration means
// no timer.
func New(minutes int, onExpire func(), opts ...Option) *Controller {
	if minutes <= 0 {
		return nil
	}
	c := &Controller{
		total:     minutes * 60,
		remaining: minutes * 60,
		interval:  time.Second,
		onExpire:  onExpire,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start begins ticking. Starting an already-running controller is a
// no-op.
func (c *Controller) Start() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running || c.expired {
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	go c.run(c.stop)
}

func (c *Controller) run(stop chan struct{}) {
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if c.tick() {
				return
			}
		}
	}
}

// tick decrements and reports whether the countdown is finished. The
// expired flag guards the callback so near-simultaneous ticks cannot
// fire it twice.
func (c *Controller) tick() bool {
	c.mu.Lock()
	if c.expired {
		c.mu.Unlock()
		return true
	}
	c.remaining--
	if c.remaining > 0 {
		c.mu.Unlock()
		return false
	}
	c.remaining = 0
	c.expired = true
	c.running = false
	fire := c.onExpire
	c.mu.Unlock()
	if fire != nil {
		fire()
	}
	return true
}

// Reset cancels any pending ticks and restores the full configured
// duration, then starts again. Used on session restart.
func (c *Controller) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.remaining = c.total
	c.expired = false
	c.running = false
	c.mu.Unlock()
	c.Start()
}

// Stop cancels the countdown without firing expiry. Idempotent.
func (c *Controller) Stop() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.running = false
}

// Remaining reports the seconds left, or -1 when there is no timer.
func (c *Controller) Remaining() int {
	if c == nil {
		return -1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}
