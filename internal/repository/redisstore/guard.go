// Package redisstore holds the Redis-backed helpers of the publishing worker:
// a redelivery guard keyed by message id and per-platform rate limiting.
package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultGuardTTL = 24 * time.Hour

// DeliveryGuard remembers message ids that were already processed so a
// redelivered copy can be skipped.
type DeliveryGuard struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewDeliveryGuard(rdb *redis.Client, ttl time.Duration) *DeliveryGuard {
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	return &DeliveryGuard{rdb: rdb, prefix: "publish:delivered:", ttl: ttl}
}

// Claim returns true the first time a message id is seen within the TTL.
func (g *DeliveryGuard) Claim(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return false, errors.New("message id is empty")
	}
	return g.rdb.SetNX(ctx, g.prefix+messageID, time.Now().Unix(), g.ttl).Result()
}

// Release forgets a message id, letting a later delivery run again.
func (g *DeliveryGuard) Release(ctx context.Context, messageID string) error {
	return g.rdb.Del(ctx, g.prefix+messageID).Err()
}
