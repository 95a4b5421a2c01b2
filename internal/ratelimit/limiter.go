// Package ratelimit throttles calculator traffic per client address.
package ratelimit

import (
	"sync"
	"time"
)

const (
	bucketIdleThreshold = 1 * time.Hour
	cleanupInterval     = 30 * time.Minute
)

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// Limiter is a fixed-window token bucket keyed by client. Each client gets
// capacity requests per window; the bucket refills fully once the window
// has elapsed.
type Limiter struct {
	mu       sync.Mutex
	capacity int
	window   time.Duration
	clients  map[string]*bucket
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// New starts a Limiter and its idle-bucket sweeper. Call Stop to release it.
func New(capacity int, window time.Duration) *Limiter {
	l := &Limiter{
		capacity: capacity,
		window:   window,
		clients:  make(map[string]*bucket),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
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

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, b := range l.clients {
		if now.Sub(b.lastRefill) > bucketIdleThreshold {
			delete(l.clients, key)
		}
	}
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Allow consumes one token for key and reports whether the request may
// proceed. It also returns the time until the bucket refills.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.clients[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.clients[key] = b
	}

	if now.Sub(b.lastRefill) >= l.window {
		b.tokens = l.capacity
		b.lastRefill = now
	}

	retryAfter := l.window - now.Sub(b.lastRefill)
	if b.tokens <= 0 {
		return false, retryAfter
	}

	b.tokens--
	return true, retryAfter
}

func (l *Limiter) clientCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
