package redisstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limit struct {
	Max    int64
	Window time.Duration
}

// DefaultLimits are the per-platform publish quotas, keyed by lowercase platform.
var DefaultLimits = map[string]Limit{
	"youtube":   {Max: 10000, Window: 24 * time.Hour},
	"facebook":  {Max: 200, Window: time.Hour},
	"instagram": {Max: 200, Window: time.Hour},
	"tiktok":    {Max: 100, Window: time.Hour},
}

// RateLimiter is a fixed-window counter per platform. Platforms without a
// configured limit are never throttled.
type RateLimiter struct {
	rdb    *redis.Client
	limits map[string]Limit
	prefix string
	now    func() time.Time
}

func NewRateLimiter(rdb *redis.Client, limits map[string]Limit) *RateLimiter {
	if limits == nil {
		limits = DefaultLimits
	}
	return &RateLimiter{
		rdb:    rdb,
		limits: limits,
		prefix: "ratelimit:",
		now:    time.Now,
	}
}

// Allow counts one request against the platform's current window and
// reports whether it fits within the limit.
func (l *RateLimiter) Allow(ctx context.Context, platform string) (bool, error) {
	platform = strings.ToLower(platform)
	lim, ok := l.limits[platform]
	if !ok || lim.Max <= 0 || lim.Window <= 0 {
		return true, nil
	}

	window := l.now().UnixNano() / int64(lim.Window)
	key := fmt.Sprintf("%s%s:%d", l.prefix, platform, window)

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, lim.Window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", platform, err)
	}
	return incr.Val() <= lim.Max, nil
}
