package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxTrackedKeys = 10_000
	idleEviction   = 10 * time.Minute
)

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Local is an in-process token bucket per key.
type Local struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewLocal creates a Local limiter allowing requestsPerMinute with the given burst.
func NewLocal(requestsPerMinute, burst int) *Local {
	return &Local{
		entries: make(map[string]*localEntry),
		limit:   rate.Limit(float64(requestsPerMinute) / 60),
		burst:   burst,
		now:     time.Now,
	}
}

func (l *Local) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		if len(l.entries) >= maxTrackedKeys {
			l.evictIdle(now)
		}
		e = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return Decision{Allowed: false, RetryAfter: time.Minute}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}
	return Decision{Allowed: true}, nil
}

func (l *Local) evictIdle(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) > idleEviction {
			delete(l.entries, k)
		}
	}
}
