// Package ratelimit is a per-key sliding window admission counter
//
// State lives in process memory: limits hold per instance only, and a
// horizontally scaled deployment needs a shared counter instead.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultLimit is the number of admissions allowed per window
	DefaultLimit = 10
	// DefaultWindow is the trailing window length
	DefaultWindow = 60 * time.Second
)

// Limiter admits at most limit calls per key in any trailing window
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	keys map[string]*slot
}

// slot is one key's admissions, oldest first
// dead is set when Sweep unlinks it so a racing Admit retries on a fresh slot
type slot struct {
	mu   sync.Mutex
	hits []time.Time
	dead bool
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock injects the time source
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns a Limiter; non-positive limit or window fall back to the defaults
func New(limit int, window time.Duration, opts ...Option) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &Limiter{limit: limit, window: window, now: time.Now, keys: map[string]*slot{}}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Admit records an admission for key and reports true, or reports false without recording
func (l *Limiter) Admit(key string) bool {
	ok, _ := l.Check(key)
	return ok
}

// Check is Admit plus, on rejection, how long until the oldest admission leaves the window
func (l *Limiter) Check(key string) (bool, time.Duration) {
	for {
		s := l.slotFor(key)
		s.mu.Lock()
		if s.dead {
			s.mu.Unlock()
			continue
		}
		now := l.now()
		s.hits = expire(s.hits, now, l.window)
		if len(s.hits) >= l.limit {
			wait := s.hits[0].Add(l.window).Sub(now)
			s.mu.Unlock()
			return false, wait
		}
		s.hits = append(s.hits, now)
		s.mu.Unlock()
		return true, 0
	}
}

// Remaining reports how many admissions key has left in the current window
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	s, ok := l.keys[key]
	l.mu.Unlock()
	if !ok {
		return l.limit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits = expire(s.hits, l.now(), l.window)
	return l.limit - len(s.hits)
}

// Sweep drops keys whose window is empty and returns how many it dropped
func (l *Limiter) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, s := range l.keys {
		s.mu.Lock()
		s.hits = expire(s.hits, now, l.window)
		if len(s.hits) == 0 {
			s.dead = true
			delete(l.keys, k)
			n++
		}
		s.mu.Unlock()
	}
	return n
}

// Run sweeps every interval until ctx ends
func (l *Limiter) Run(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		every = l.window
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			l.Sweep()
		}
	}
}

func (l *Limiter) slotFor(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.keys[key]
	if !ok {
		s = &slot{}
		l.keys[key] = s
	}
	return s
}

// expire drops hits at or older than now-window; an entry exactly window old is gone
func expire(hits []time.Time, now time.Time, window time.Duration) []time.Time {
	i := 0
	for i < len(hits) && now.Sub(hits[i]) >= window {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0], hits[i:]...)
}
