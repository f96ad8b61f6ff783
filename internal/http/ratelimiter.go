package http

import (
	"sync"
	"time"
)

type rateLimiterClient struct {
	tokens   float64
	last     time.Time
	lastSeen time.Time
}

// RateLimiter is a token bucket per client key. Idle clients are pruned after ttl.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*rateLimiterClient
	capacity   float64
	refillRate float64
	ttl        time.Duration
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewRateLimiter starts a limiter allowing burst requests at once and
// refillPerSecond afterwards. Call Close to stop the pruning goroutine.
func NewRateLimiter(burst int, refillPerSecond float64, ttl time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:    make(map[string]*rateLimiterClient),
		capacity:   float64(burst),
		refillRate: refillPerSecond,
		ttl:        ttl,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	if ttl <= 0 {
		close(rl.done)
		return rl
	}

	go rl.pruneLoop()
	return rl
}

func (rl *RateLimiter) pruneLoop() {
	defer close(rl.done)

	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.pruneStale()
		}
	}
}

// Allow consumes a token for key, reporting whether the request may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	if key == "" {
		key = "unknown"
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[key]
	if !ok {
		client = &rateLimiterClient{tokens: rl.capacity, last: now}
		rl.clients[key] = client
	}
	client.lastSeen = now

	if elapsed := now.Sub(client.last).Seconds(); elapsed > 0 {
		client.tokens = min(rl.capacity, client.tokens+elapsed*rl.refillRate)
		client.last = now
	}

	if client.tokens < 1 {
		return false
	}
	client.tokens--
	return true
}

// Clients reports how many client buckets are tracked.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Close stops the pruning goroutine and waits for it to exit.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	<-rl.done
}

func (rl *RateLimiter) pruneStale() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, client := range rl.clients {
		if now.Sub(client.lastSeen) > rl.ttl {
			delete(rl.clients, key)
		}
	}
}
