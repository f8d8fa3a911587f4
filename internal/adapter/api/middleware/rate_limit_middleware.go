package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"traveleon/internal/infrastructure/ratelimit"
	"traveleon/pkg/errors"
	"traveleon/pkg/logger"
	"traveleon/pkg/response"
)

// RateLimit limits requests per client IP with a token bucket.
type RateLimit struct {
	limiter *ratelimit.RateLimiter
}

func NewRateLimit(burst int, refill time.Duration) *RateLimit {
	return &RateLimit{limiter: ratelimit.NewRateLimiter(burst, refill)}
}

// StartCleanup drops idle buckets every interval until ctx ends.
func (rl *RateLimit) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.limiter.Cleanup(interval)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (rl *RateLimit) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ip := c.RealIP()
		if ok, wait := rl.limiter.Allow(ip); !ok {
			logger.Warn("Rate limit: blocked request from %s (retry in %v)", ip, wait)
			return response.Error(c, errors.TooManyRequests("Too many requests, slow down"))
		}
		return next(c)
	}
}
