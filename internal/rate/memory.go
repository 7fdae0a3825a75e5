package rate

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter replica el fixed-window en memoria para despliegues sin
// redis (un solo nodo). Mismo contrato que RedisLimiter.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string]*windowCounter
	max    int64
	window time.Duration
}

type windowCounter struct {
	start time.Time
	hits  int64
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		hits:   make(map[string]*windowCounter),
		max:    int64(max),
		window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	wc, ok := l.hits[key]
	if !ok || wc.start.Before(winStart) {
		wc = &windowCounter{start: winStart}
		l.hits[key] = wc
	}
	wc.hits++

	allowed := wc.hits <= l.max
	remaining := l.max - wc.hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{Allowed: allowed, Remaining: remaining, CurrentHits: wc.hits}
	if !allowed {
		res.RetryAfter = wc.start.Add(l.window).Sub(now)
	}
	return res, nil
}
