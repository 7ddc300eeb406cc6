package ratelimit

import (
	"sync"
	"time"
)

// Limiter throttles expensive forecast endpoints per caller. Each key owns
// a token bucket; train and backtest use different budgets, so capacity and
// refill are parameters of Allow rather than of the limiter.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
}

type tokenBucket struct {
	tokens   float64
	capacity float64
	refill   float64 // tokens per second
	last     time.Time
}

func New() *Limiter {
	return &Limiter{buckets: make(map[string]*tokenBucket)}
}

// Allow consumes one token for key, creating the bucket full on first use.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: capacity, capacity: capacity, refill: refillPerSec, last: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * b.refill
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
