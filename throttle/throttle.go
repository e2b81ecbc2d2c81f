// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package throttle counts failed login attempts per source and locks a source
// out once it reaches the limit.
package throttle

import (
	"sync"
	"time"
)

type entry struct {
	failures int
	expires  time.Time
}

// Throttle is an in-process failed-attempt counter. Each recorded failure
// extends the lockout window for its key; keys expire once the window passes
// without another failure.
type Throttle struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	now     func() time.Time
	entries map[string]entry
}

// New returns a Throttle that locks a key out after max failures within window.
func New(max int, window time.Duration) *Throttle {
	return &Throttle{
		max:     max,
		window:  window,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// TooManyAttempts reports whether key is currently locked out.
func (t *Throttle) TooManyAttempts(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.lookup(key)
	return ok && e.failures >= t.max
}

// RecordFailure counts one failed attempt for key and returns the new count.
func (t *Throttle) RecordFailure(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, _ := t.lookup(key)
	e.failures++
	e.expires = t.now().Add(t.window)
	t.entries[key] = e
	return e.failures
}

// Clear forgets all failures for key.
func (t *Throttle) Clear(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, key)
}

// lookup returns the live entry for key, dropping it if expired.
// Callers hold t.mu.
func (t *Throttle) lookup(key string) (entry, bool) {
	e, ok := t.entries[key]
	if !ok {
		return entry{}, false
	}
	if !t.now().Before(e.expires) {
		delete(t.entries, key)
		return entry{}, false
	}
	return e, true
}
