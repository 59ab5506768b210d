package service

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRateLimitAdmitWithinWindow(t *testing.T) {
	limiter := NewRateLimitService(3, time.Minute, zap.NewNop())
	now := time.Now()

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Admit("client-a", now)
		if !allowed {
			t.Fatalf("request %d should be admitted", i+1)
		}
	}

	allowed, retryAfter := limiter.Admit("client-a", now)
	if allowed {
		t.Fatal("4th request within the window should be rejected")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %v", retryAfter)
	}
}

func TestRateLimitEleventhRequestRejected(t *testing.T) {
	// 11 requests within one second against a 10/minute limit.
	limiter := NewRateLimitService(10, time.Minute, zap.NewNop())
	start := time.Now()

	for i := 0; i < 10; i++ {
		now := start.Add(time.Duration(i) * 100 * time.Millisecond)
		if allowed, _ := limiter.Admit("client-a", now); !allowed {
			t.Fatalf("request %d should be admitted", i+1)
		}
	}

	allowed, retryAfter := limiter.Admit("client-a", start.Add(time.Second))
	if allowed {
		t.Fatal("11th request should be rejected")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %v", retryAfter)
	}
}

func TestRateLimitWindowReset(t *testing.T) {
	limiter := NewRateLimitService(1, time.Minute, zap.NewNop())
	now := time.Now()

	if allowed, _ := limiter.Admit("client-a", now); !allowed {
		t.Fatal("first request should be admitted")
	}
	if allowed, _ := limiter.Admit("client-a", now.Add(time.Second)); allowed {
		t.Fatal("second request in the same window should be rejected")
	}
	if allowed, _ := limiter.Admit("client-a", now.Add(61*time.Second)); !allowed {
		t.Fatal("request after window elapsed should start a fresh window")
	}
}

func TestRateLimitClientsIndependent(t *testing.T) {
	limiter := NewRateLimitService(1, time.Minute, zap.NewNop())
	now := time.Now()

	limiter.Admit("client-a", now)
	if allowed, _ := limiter.Admit("client-b", now); !allowed {
		t.Fatal("client-b must not be affected by client-a's window")
	}
}

func TestRateLimitConcurrentAdmission(t *testing.T) {
	// No lost updates: with K slots, exactly K of N concurrent requests win.
	const limit = 10
	const attempts = 100

	limiter := NewRateLimitService(limit, time.Minute, zap.NewNop())
	now := time.Now()

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Admit("client-a", now); allowed {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	if admitted != limit {
		t.Fatalf("expected exactly %d admissions, got %d", limit, admitted)
	}
}

func TestRateLimitRejectionNotCounted(t *testing.T) {
	// Rejected requests must not eat into the next window.
	limiter := NewRateLimitService(2, time.Minute, zap.NewNop())
	now := time.Now()

	limiter.Admit("client-a", now)
	limiter.Admit("client-a", now)
	for i := 0; i < 5; i++ {
		limiter.Admit("client-a", now) // rejected
	}

	next := now.Add(61 * time.Second)
	for i := 0; i < 2; i++ {
		if allowed, _ := limiter.Admit("client-a", next); !allowed {
			t.Fatalf("request %d in the fresh window should be admitted", i+1)
		}
	}
}

func TestRateLimitSweep(t *testing.T) {
	limiter := NewRateLimitService(1, time.Minute, zap.NewNop())
	now := time.Now()

	limiter.Admit("client-a", now)
	limiter.sweep(now.Add(3 * time.Minute))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if len(limiter.windows) != 0 {
		t.Fatalf("expected stale windows swept, got %d entries", len(limiter.windows))
	}
}
