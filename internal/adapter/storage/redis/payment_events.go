package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// PaymentEventCache implements ports.PaymentEventCache using Redis.
// A hit only means the event was applied once; the order row is still checked.
type PaymentEventCache struct {
	client goredis.UniversalClient
	prefix string
}

// NewPaymentEventCache creates a new Redis-backed payment event cache.
func NewPaymentEventCache(client goredis.UniversalClient) *PaymentEventCache {
	return &PaymentEventCache{
		client: client,
		prefix: "escrow:event:",
	}
}

// Seen reports whether key was remembered and has not expired.
func (c *PaymentEventCache) Seen(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis payment event exists: %w", err)
	}
	return n > 0, nil
}

// Remember stores key with ttl. An existing key keeps its original expiry.
func (c *PaymentEventCache) Remember(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.SetNX(ctx, c.prefix+key, time.Now().UTC().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("redis payment event set: %w", err)
	}
	return nil
}
