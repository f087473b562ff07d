package memory

import (
	"sync"
	"time"
)

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type bucket struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter counts requests per client key in fixed, non-overlapping
// windows. A denied check does not increment the counter.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	window  time.Duration
	max     int
	now     Clock

	janitorDone chan struct{}
	janitorOnce sync.Once
}

// NewFixedWindowLimiter creates a limiter allowing max requests per window.
// clock may be nil (time.Now).
func NewFixedWindowLimiter(window time.Duration, max int, clock Clock) *FixedWindowLimiter {
	if clock == nil {
		clock = time.Now
	}
	return &FixedWindowLimiter{
		buckets:     make(map[string]*bucket),
		window:      window,
		max:         max,
		now:         clock,
		janitorDone: make(chan struct{}),
	}
}

// Check records one request attempt for key and reports whether it is
// allowed. The read-modify-write is atomic per key.
func (l *FixedWindowLimiter) Check(key string) Decision {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{count: 1, resetAt: now.Add(l.window)}
		l.buckets[key] = b
		return Decision{Allowed: true, Limit: l.max, Remaining: l.max - 1, ResetAt: b.resetAt}
	}

	if b.count < l.max {
		b.count++
		return Decision{Allowed: true, Limit: l.max, Remaining: l.max - b.count, ResetAt: b.resetAt}
	}

	return Decision{
		Allowed:    false,
		Limit:      l.max,
		Remaining:  0,
		ResetAt:    b.resetAt,
		RetryAfter: b.resetAt.Sub(now),
	}
}

// StartJanitor launches periodic removal of elapsed buckets so abandoned keys
// do not accumulate. Runs until Stop.
func (l *FixedWindowLimiter) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.reap()
			case <-l.janitorDone:
				return
			}
		}
	}()
}

// Stop terminates the janitor goroutine. Safe to call more than once.
func (l *FixedWindowLimiter) Stop() {
	l.janitorOnce.Do(func() { close(l.janitorDone) })
}

func (l *FixedWindowLimiter) reap() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if !now.Before(b.resetAt) {
			delete(l.buckets, key)
		}
	}
}
