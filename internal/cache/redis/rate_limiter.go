package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// RateLimiter implements domain.RateLimiter with a fixed window counter per
// key. The counter and its expiry are set in one pipeline so a crashed
// request cannot leave a counter without a TTL.
type RateLimiter struct {
	client *Client
}

// NewRateLimiter creates a RateLimiter backed by the given Client.
func NewRateLimiter(c *Client) *RateLimiter {
	return &RateLimiter{client: c}
}

func rateLimitKey(key string) string {
	return "copy-polymarket:ratelimit:" + key
}

// Allow counts one request against the key's current window and reports
// whether it fits under the limit.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rdb, err := rl.client.Underlying(ctx)
	if err != nil {
		return false, err
	}

	fullKey := rateLimitKey(key)
	pipe := rdb.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.PExpireNX(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: rate limit allow %s: %w", key, err)
	}

	return incr.Val() <= int64(limit), nil
}

// Compile-time interface check.
var _ domain.RateLimiter = (*RateLimiter)(nil)
