package ratelimit

import (
	"testing"
	"time"
)

func TestFirstRequestAllowed(t *testing.T) {
	limiter := NewLimiter(CommentRate, CommentBurst)

	if !limiter.Allow("sam") {
		t.Error("expected first request from a new key to be allowed")
	}
}

func TestRequestsWithinBurstAllowed(t *testing.T) {
	limiter := NewLimiter(CommentRate, CommentBurst)

	for i := 0; i < CommentBurst; i++ {
		if !limiter.Allow("sam") {
			t.Errorf("request %d within burst of %d should be allowed", i+1, CommentBurst)
		}
	}
}

func TestRequestsExceedingBurstDenied(t *testing.T) {
	limiter := NewLimiter(CommentRate, CommentBurst)

	for i := 0; i < CommentBurst; i++ {
		limiter.Allow("sam")
	}

	if limiter.Allow("sam") {
		t.Error("request exceeding burst should be denied")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	limiter := NewLimiter(CommentRate, CommentBurst)

	for i := 0; i < CommentBurst; i++ {
		limiter.Allow("sam")
	}

	if !limiter.Allow("alex") {
		t.Error("a different key must not be affected")
	}
}

func TestTokensReplenishOverTime(t *testing.T) {
	limiter := NewLimiter(10, 2)

	limiter.Allow("sam")
	limiter.Allow("sam")
	if limiter.Allow("sam") {
		t.Fatal("expected bucket exhausted")
	}

	time.Sleep(150 * time.Millisecond)

	if !limiter.Allow("sam") {
		t.Error("expected a token to replenish after waiting")
	}
}
