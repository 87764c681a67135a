package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitStore is a fixed-window request counter shared by every API
// instance. It satisfies echo's middleware.RateLimiterStore.
// Key format: cms:ratelimit:<identifier>:<window_start_unix>
type RateLimitStore struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewRateLimitStore(client redis.Cmdable, limit int, window time.Duration) *RateLimitStore {
	return &RateLimitStore{client: client, limit: int64(limit), window: window, now: time.Now}
}

// Allow counts one request for identifier and reports whether it is still
// within the window's limit.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	windowStart := s.now().Truncate(s.window).Unix()
	k := key("ratelimit", identifier, strconv.FormatInt(windowStart, 10))

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return incr.Val() <= s.limit, nil
}
