// Package ratelimit guards the manual-clean endpoint: a cleanup cycle walks
// the whole watched subtree, so callers only get a few per window.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter enforces a fixed-window limit per caller identifier.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	counts map[string]int
	resets map[string]time.Time
	lastGC time.Time
}

// New creates a Limiter allowing limit calls per window per identifier.
func New(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		limit:  limit,
		window: window,
		counts: make(map[string]int),
		resets: make(map[string]time.Time),
		lastGC: time.Now(),
	}
}

// Allow reports whether the identifier may proceed, and how long until its
// window resets. Stale identifiers are swept opportunistically.
func (l *Limiter) Allow(id string) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > l.window {
		for k, reset := range l.resets {
			if now.After(reset) {
				delete(l.resets, k)
				delete(l.counts, k)
			}
		}
		l.lastGC = now
	}

	reset, ok := l.resets[id]
	if !ok || now.After(reset) {
		l.counts[id] = 1
		l.resets[id] = now.Add(l.window)
		return true, l.window
	}
	if l.counts[id] >= l.limit {
		return false, time.Until(reset)
	}
	l.counts[id]++
	return true, time.Until(reset)
}
