package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_AllowWithinBurst(t *testing.T) {
	l := NewLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("openai") {
			t.Errorf("Request %d within burst should be allowed", i+1)
		}
	}
	if l.Allow("openai") {
		t.Error("Request beyond burst should be denied")
	}
}

func TestLimiter_KeysIsolated(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("openai") {
		t.Error("First openai request should pass")
	}
	if l.Allow("openai") {
		t.Error("Second openai request should be throttled")
	}
	// A different provider has its own bucket
	if !l.Allow("ollama") {
		t.Error("First ollama request should pass")
	}
}

func TestLimiter_SetRateOverridesKey(t *testing.T) {
	l := NewLimiter(1, 1)
	l.SetRate("openai", 1000, 100)

	for i := 0; i < 50; i++ {
		if !l.Allow("openai") {
			t.Fatalf("Request %d should pass under the raised rate", i+1)
		}
	}
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	l.Allow("openai") // drain the burst

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "openai"); err == nil {
		t.Error("Expected context deadline error")
	}
}

func TestLimiter_BurstClampedToOne(t *testing.T) {
	l := NewLimiter(10, 0)

	if !l.Allow("k") {
		t.Error("Clamped burst of one should allow the first request")
	}
}
