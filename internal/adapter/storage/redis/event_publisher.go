package redis

import (
	"context"
	"encoding/json"
	"time"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/metrics"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const publishTimeout = 2 * time.Second

// EventPublisher implements ports.Notifier by publishing events as JSON on a
// Redis channel. Delivery is at most once; subscribers that are down miss events.
type EventPublisher struct {
	client  goredis.UniversalClient
	channel string
	log     zerolog.Logger
}

// NewEventPublisher creates a publisher for channel.
func NewEventPublisher(client goredis.UniversalClient, channel string, log zerolog.Logger) *EventPublisher {
	return &EventPublisher{client: client, channel: channel, log: log}
}

// Notify publishes ev. Failures are logged and counted, never returned.
func (p *EventPublisher) Notify(ctx context.Context, ev domain.Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error().Err(err).Str("event", string(ev.Type)).Msg("redis publisher: failed to marshal event")
		metrics.NotificationsTotal.WithLabelValues("redis", "failed").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	receivers, err := p.client.Publish(ctx, p.channel, body).Result()
	if err != nil {
		p.log.Warn().Err(err).Str("event", string(ev.Type)).Str("channel", p.channel).Msg("redis publisher: publish failed")
		metrics.NotificationsTotal.WithLabelValues("redis", "failed").Inc()
		return
	}
	p.log.Debug().Str("event", string(ev.Type)).Int64("receivers", receivers).Msg("redis publisher: published")
	metrics.NotificationsTotal.WithLabelValues("redis", "ok").Inc()
}
