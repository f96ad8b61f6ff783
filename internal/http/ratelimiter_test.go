package http

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, 2, time.Minute)
	t.Cleanup(rl.Close)

	current := time.Unix(0, 0)
	rl.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("expected request %d to be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("expected fourth request to be denied")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatalf("expected a different client to have its own bucket")
	}

	current = current.Add(500 * time.Millisecond)
	if !rl.Allow("10.0.0.1") {
		t.Fatalf("expected request after refill to be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("expected refill to grant a single token")
	}
}

func TestRateLimiterPrunesIdleClients(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1, time.Hour)
	t.Cleanup(rl.Close)

	current := time.Unix(0, 0)
	rl.now = func() time.Time { return current }

	rl.Allow("old")
	current = current.Add(30 * time.Minute)
	rl.Allow("recent")

	current = current.Add(45 * time.Minute)
	rl.pruneStale()

	if got := rl.Clients(); got != 1 {
		t.Fatalf("expected one client after pruning, got %d", got)
	}
}

func TestRateLimiterCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1, time.Millisecond)
	rl.Close()
	rl.Close()

	withoutTTL := NewRateLimiter(1, 1, 0)
	withoutTTL.Close()
}
