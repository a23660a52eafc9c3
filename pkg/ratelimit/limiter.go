// Package ratelimit throttles callers of the synchronous plotting API.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// SlidingWindowLimiter allows at most limit requests per key within any
// window-long interval.
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string]*window
	limit      int
	windowSize time.Duration
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	mu       sync.Mutex
	requests []time.Time
}

// NewSlidingWindowLimiter creates a limiter and starts a janitor that drops
// idle keys every cleanup interval. Zero disables the janitor.
func NewSlidingWindowLimiter(limit int, windowSize, cleanup time.Duration) *SlidingWindowLimiter {
	l := &SlidingWindowLimiter{
		windows:    make(map[string]*window),
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	if cleanup > 0 {
		go l.janitor(cleanup)
	}
	return l
}

// PerMinute is the common case of NewSlidingWindowLimiter.
func PerMinute(limit int) *SlidingWindowLimiter {
	return NewSlidingWindowLimiter(limit, time.Minute, 5*time.Minute)
}

// Allow checks if a request is allowed
func (l *SlidingWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	w, ok := l.windows[key]
	if !ok {
		w = &window{}
		l.windows[key] = w
	}
	l.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	w.requests = trim(w.requests, now.Add(-l.windowSize))
	if len(w.requests) >= l.limit {
		return false, nil
	}
	w.requests = append(w.requests, now)
	return true, nil
}

// Reset resets the rate limit for a key
func (l *SlidingWindowLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// Close stops the janitor.
func (l *SlidingWindowLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *SlidingWindowLimiter) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

func (l *SlidingWindowLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.windowSize)
	for key, w := range l.windows {
		w.mu.Lock()
		w.requests = trim(w.requests, cutoff)
		empty := len(w.requests) == 0
		w.mu.Unlock()
		if empty {
			delete(l.windows, key)
		}
	}
}

func (l *SlidingWindowLimiter) keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// trim drops timestamps not after cutoff. Timestamps are appended in order.
func trim(reqs []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(reqs) && !reqs[i].After(cutoff) {
		i++
	}
	return reqs[i:]
}
