// Package ratelimiter bounds outbound calls to a single market-data provider.
package ratelimiter

import (
	"sync"
	"time"
)

// DefaultWindow is the trailing window most providers quote their quota in.
const DefaultWindow = time.Minute

// Limiter is the non-blocking gate consulted before every provider call.
type Limiter interface {
	Allow() bool
	Record()
	TryAcquire() bool
}

// SlidingWindow keeps the timestamps of recorded calls within the trailing window.
// Allow reports false once the count in that window reaches the ceiling.
// It never sleeps: callers decide whether to queue, reject, or fall back.
type SlidingWindow struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	times []time.Time // oldest first
}

var _ Limiter = (*SlidingWindow)(nil)

// NewSlidingWindow returns a limiter that admits at most limit calls per window.
// A non-positive limit disables the gate.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	if window <= 0 {
		window = DefaultWindow
	}
	return &SlidingWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (l *SlidingWindow) WithClock(now func() time.Time) *SlidingWindow {
	l.now = now
	return l
}

// Limit returns the configured ceiling.
func (l *SlidingWindow) Limit() int { return l.limit }

// Allow reports whether one more call fits in the trailing window.
func (l *SlidingWindow) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowLocked(l.now())
}

// Record tags one call at the current time.
func (l *SlidingWindow) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.evictLocked(now)
	l.times = append(l.times, now)
}

// TryAcquire performs Allow and Record as one step, so concurrent callers
// cannot both pass the check before either records.
func (l *SlidingWindow) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if !l.allowLocked(now) {
		return false
	}
	l.times = append(l.times, now)
	return true
}

// InWindow returns the number of calls currently counted.
func (l *SlidingWindow) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evictLocked(l.now())
	return len(l.times)
}

func (l *SlidingWindow) allowLocked(now time.Time) bool {
	if l.limit <= 0 {
		return true
	}
	l.evictLocked(now)
	return len(l.times) < l.limit
}

func (l *SlidingWindow) evictLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.times) && !l.times[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.times = append(l.times[:0], l.times[i:]...)
	}
}
