package ratelimit

import (
	"sync"
	"time"
)

type tokenBucket struct {
	tokens     int
	lastRefill time.Time
	lastUsed   time.Time
}

// RateLimiter is a keyed token bucket: each key holds up to burst tokens and
// regains one every refill interval.
type RateLimiter struct {
	burst   int
	refill  time.Duration
	now     func() time.Time
	buckets map[string]*tokenBucket
	mutex   sync.Mutex
}

func NewRateLimiter(burst int, refill time.Duration) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		burst:   burst,
		refill:  refill,
		now:     time.Now,
		buckets: make(map[string]*tokenBucket),
	}
}

// Allow consumes a token for key. When none is left it reports how long
// until the next one.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: rl.burst, lastRefill: now}
		rl.buckets[key] = b
	}
	b.lastUsed = now

	if rl.refill > 0 {
		if gained := int(now.Sub(b.lastRefill) / rl.refill); gained > 0 {
			b.tokens += gained
			if b.tokens > rl.burst {
				b.tokens = rl.burst
			}
			b.lastRefill = b.lastRefill.Add(time.Duration(gained) * rl.refill)
		}
	}

	if b.tokens > 0 {
		b.tokens--
		return true, 0
	}
	return false, b.lastRefill.Add(rl.refill).Sub(now)
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastUsed) > maxIdle {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) Len() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.buckets)
}
