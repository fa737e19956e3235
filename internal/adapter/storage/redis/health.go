package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
)

// HealthCheck pings redis. While it is down, rate limits open up and payment
// replays fall through to the database.
type HealthCheck struct {
	client goredis.UniversalClient
}

func NewHealthCheck(client goredis.UniversalClient) *HealthCheck {
	return &HealthCheck{client: client}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

func (h *HealthCheck) Name() string { return "redis" }
