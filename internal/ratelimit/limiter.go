// Package ratelimit bounds request rates per client with a sliding window.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Defaults matching the storefront's general limit: 100 requests per
// 15-minute window, at most 10000 tracked clients.
const (
	DefaultWindow     = 15 * time.Minute
	DefaultMax        = 100
	DefaultMaxClients = 10000
)

// Limiter reports whether a client may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a process-local sliding-window limiter. Memory is
// bounded: at most maxClients keys are tracked, evicting the oldest-seen
// key when full, and expired entries are swept opportunistically.
type MemoryLimiter struct {
	window     time.Duration
	max        int
	maxClients int

	mu      sync.Mutex
	clients map[string][]time.Time
	order   []string

	now func() time.Time
}

func NewMemoryLimiter(window time.Duration, max, maxClients int) *MemoryLimiter {
	return &MemoryLimiter{
		window:     window,
		max:        max,
		maxClients: maxClients,
		clients:    make(map[string][]time.Time),
		now:        time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.window)

	if _, tracked := l.clients[key]; !tracked {
		if len(l.clients) >= l.maxClients {
			l.evictOldest()
		}
		l.order = append(l.order, key)
	}

	valid := keepAfter(l.clients[key], windowStart)
	if len(valid) >= l.max {
		l.clients[key] = valid
		return false, nil
	}

	l.clients[key] = append(valid, now)

	// Opportunistic sweep of expired entries, roughly every 20th call.
	if rand.Float64() < 0.05 {
		l.sweep(windowStart)
	}
	return true, nil
}

func (l *MemoryLimiter) evictOldest() {
	for len(l.order) > 0 {
		oldest := l.order[0]
		l.order = l.order[1:]
		if _, ok := l.clients[oldest]; ok {
			delete(l.clients, oldest)
			return
		}
	}
}

func (l *MemoryLimiter) sweep(windowStart time.Time) {
	keptOrder := l.order[:0]
	for _, key := range l.order {
		times, ok := l.clients[key]
		if !ok {
			continue
		}
		valid := keepAfter(times, windowStart)
		if len(valid) == 0 {
			delete(l.clients, key)
			continue
		}
		l.clients[key] = valid
		keptOrder = append(keptOrder, key)
	}
	l.order = keptOrder
}

func keepAfter(times []time.Time, cutoff time.Time) []time.Time {
	valid := make([]time.Time, 0, len(times))
	for _, t := range times {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	return valid
}
