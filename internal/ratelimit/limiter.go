// Package ratelimit implements the per-identifier sliding-window limiter that
// gates new page generations.
//
// The table lives in process memory. With more than one replica each process
// counts independently, so the effective limit is max * replicas. This is
// acceptable for the low-traffic demo the limiter was built for.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultWindow = time.Hour
	DefaultMax    = 3

	cleanupInterval = 10 * time.Minute
)

// Result is the outcome of a single Check.
type Result struct {
	Allowed   bool
	Remaining int
	// ResetInMinutes is the time until the oldest request leaves the window.
	// Only set when Allowed is false.
	ResetInMinutes int
}

type record struct {
	timestamps []time.Time
}

// Limiter is a sliding-window counter keyed by an opaque identifier (client IP).
type Limiter struct {
	mu          sync.Mutex
	window      time.Duration
	max         int
	now         func() time.Time
	records     map[string]*record
	lastCleanup time.Time
}

// Option customises a Limiter.
type Option func(*Limiter)

func WithWindow(d time.Duration) Option { return func(l *Limiter) { l.window = d } }
func WithMax(n int) Option              { return func(l *Limiter) { l.max = n } }

// WithClock replaces time.Now. Tests use it to move time forward.
func WithClock(now func() time.Time) Option { return func(l *Limiter) { l.now = now } }

func New(opts ...Option) *Limiter {
	l := &Limiter{
		window:  DefaultWindow,
		max:     DefaultMax,
		now:     time.Now,
		records: make(map[string]*record),
	}
	for _, o := range opts {
		o(l)
	}
	if l.window <= 0 {
		l.window = DefaultWindow
	}
	if l.max <= 0 {
		l.max = DefaultMax
	}
	l.lastCleanup = l.now()
	return l
}

// Max returns the configured number of requests per window.
func (l *Limiter) Max() int { return l.max }

// Check records a request for identifier if it fits in the window.
// A denied request is not recorded.
func (l *Limiter) Check(identifier string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.maybeCleanup(now)

	windowStart := now.Add(-l.window)
	rec, ok := l.records[identifier]
	if !ok {
		rec = &record{}
		l.records[identifier] = rec
	}
	rec.timestamps = fresh(rec.timestamps, windowStart)

	if len(rec.timestamps) >= l.max {
		resetIn := rec.timestamps[0].Add(l.window).Sub(now)
		return Result{
			Allowed:        false,
			Remaining:      0,
			ResetInMinutes: int(math.Ceil(resetIn.Minutes())),
		}
	}

	rec.timestamps = append(rec.timestamps, now)
	return Result{
		Allowed:   true,
		Remaining: l.max - len(rec.timestamps),
	}
}

// Reset drops all recorded requests.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = make(map[string]*record)
	l.lastCleanup = l.now()
}

// Len returns the number of identifiers currently tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// maybeCleanup drops stale identifiers at most once per cleanupInterval.
// Caller holds l.mu.
func (l *Limiter) maybeCleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < cleanupInterval {
		return
	}
	l.lastCleanup = now

	cutoff := now.Add(-l.window)
	for key, rec := range l.records {
		rec.timestamps = fresh(rec.timestamps, cutoff)
		if len(rec.timestamps) == 0 {
			delete(l.records, key)
		}
	}
}

// fresh returns the timestamps strictly after cutoff. Input is ordered.
func fresh(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	return append(ts[:0:0], ts[i:]...)
}
