package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowConsumesAndRefills(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, 6*time.Second)
	rl.now = func() time.Time { return clock }

	ok, _ := rl.Allow("S1")
	assert.True(t, ok)
	ok, _ = rl.Allow("S1")
	assert.True(t, ok)

	ok, wait := rl.Allow("S1")
	assert.False(t, ok)
	assert.Equal(t, 6*time.Second, wait)

	ok, _ = rl.Allow("B1")
	assert.True(t, ok, "keys are independent")

	clock = clock.Add(7 * time.Second)
	ok, _ = rl.Allow("S1")
	assert.True(t, ok)
	ok, wait = rl.Allow("S1")
	assert.False(t, ok)
	assert.Equal(t, 5*time.Second, wait)
}

func TestCleanupDropsIdleBuckets(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Second)
	rl.now = func() time.Time { return clock }

	rl.Allow("old")
	clock = clock.Add(2 * time.Hour)
	rl.Allow("new")

	rl.Cleanup(time.Hour)
	assert.Equal(t, 1, rl.Len())
}
