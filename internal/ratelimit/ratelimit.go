// Package ratelimit is a token-bucket limiter keyed by an arbitrary
// string. The server uses it to cap comment posting per author.
package ratelimit

import (
	"sync"
	"time"
)

// Comment posting policy: 5 comments per 10 seconds per author.
const (
	CommentRate  = 0.5
	CommentBurst = 5
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   float64
}

func NewLimiter(tokensPerSecond float64, burst int) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		rate:    tokensPerSecond,
		burst:   float64(burst),
	}
	go l.cleanup()
	return l
}

// Allow reports whether the caller identified by key may proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[key]
	if !exists {
		l.buckets[key] = &bucket{tokens: l.burst - 1, lastSeen: time.Now()}
		return true
	}

	elapsed := time.Since(b.lastSeen).Seconds()
	b.lastSeen = time.Now()
	b.tokens += elapsed * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}

	if b.tokens < 1 {
		return false
	}

	b.tokens--
	return true
}

func (l *Limiter) cleanup() {
	for {
		time.Sleep(5 * time.Minute)
		l.mu.Lock()
		for key, b := range l.buckets {
			if time.Since(b.lastSeen) > 10*time.Minute {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}
