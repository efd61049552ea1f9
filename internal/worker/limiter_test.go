package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "example.com"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "other.com"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if limiter.Len() != 2 {
		t.Errorf("expected 2 keys, got %d", limiter.Len())
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	if !limiter.Allow("slow") {
		t.Fatal("first request should pass")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "slow"); err == nil {
		t.Error("expected wait to fail when the deadline is shorter than the refill")
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("10.0.0.1") {
		t.Error("first request should pass")
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("expected allow to fail (exhausted tokens)")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Error("expected allow for another key")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("key") {
			t.Fatalf("request %d rejected with limiting disabled", i)
		}
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetRate("slow.com", 0.1, 1)

	if !limiter.Allow("slow.com") {
		t.Error("first request should pass")
	}
	if limiter.Allow("slow.com") {
		t.Error("second request should fail")
	}
	if !limiter.Allow("fast.com") {
		t.Error("other key should pass")
	}
}

func TestHostKey(t *testing.T) {
	host, err := HostKey("https://Example.com:8443/foo")
	if err != nil {
		t.Fatalf("HostKey failed: %v", err)
	}
	if host != "example.com" {
		t.Errorf("expected example.com, got %s", host)
	}

	if _, err := HostKey("::invalid"); err == nil {
		t.Error("expected error for invalid URL")
	}
	if _, err := HostKey("/relative/path"); err == nil {
		t.Error("expected error for URL without host")
	}
}
