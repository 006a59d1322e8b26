// Package ratelimit implements process-wide, per-key fixed-window admission
// control. State lives only in memory: it is created at process start, is
// never persisted, and is not shared between instances, so running more
// than one replica multiplies the effective limit.
package ratelimit

import (
	"sync"
	"time"
)

// Decision describes the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long a denied caller should wait, rounded up to a
// whole second and never below one.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	secs := (d.ResetAt.Sub(now) + time.Second - 1) / time.Second
	if secs < 1 {
		secs = 1
	}
	return secs * time.Second
}

type window struct {
	start time.Time
	count int
}

// Limiter admits up to limit calls per key per window.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]*window
}

// New returns a Limiter admitting limit calls per key in every window.
func New(limit int, size time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  size,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// WithClock replaces the time source. It is meant for tests and must be
// called before the limiter is shared.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow reports whether a call for key is admitted, counting it if so.
func (l *Limiter) Allow(key string) bool {
	return l.Reserve(key).Allowed
}

// Reserve is Allow with the window bookkeeping exposed. A denied call is
// not counted.
func (l *Limiter) Reserve(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(l.window)) {
		w = &window{start: now}
		l.windows[key] = w
	}

	d := Decision{Limit: l.limit, ResetAt: w.start.Add(l.window)}
	if w.count >= l.limit {
		return d
	}

	w.count++
	d.Allowed = true
	d.Remaining = l.limit - w.count
	return d
}

// Sweep forgets every key whose window has elapsed and returns how many
// were dropped.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for k, w := range l.windows {
		if !now.Before(w.start.Add(l.window)) {
			delete(l.windows, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
