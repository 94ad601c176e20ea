// Package events publishes domain events to Redis pub/sub for external
// consumers (notification bots, activity feeds). The engine never depends on
// delivery; a failed publish is logged and dropped.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"nexium-server/internal/shared/redis"
)

// Event types emitted by the game service.
const (
	TypeSectorDiscovered = "sector_discovered"
	TypeBattleCompleted  = "battle_completed"
	TypeListingCreated   = "listing_created"
	TypeListingSold      = "listing_sold"
)

// Envelope is the wire form of one event.
type Envelope struct {
	Type    string      `json:"type"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload"`
}

// Publisher is the fan-out boundary. Implementations must be safe for
// concurrent use and must never block game actions on delivery.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{})
}

type redisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher publishes JSON envelopes on a single pub/sub channel.
func NewRedisPublisher(client *redis.Client, channel string) Publisher {
	return &redisPublisher{client: client, channel: channel}
}

func (p *redisPublisher) Publish(ctx context.Context, eventType string, payload interface{}) {
	logger := slog.With("component", "events", "operation", "publish", "event_type", eventType)

	data, err := json.Marshal(Envelope{Type: eventType, At: time.Now().UTC(), Payload: payload})
	if err != nil {
		logger.Error("Failed to marshal event", "error", err)
		return
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		logger.Error("Failed to publish event", "error", err)
		return
	}

	logger.Debug("Event published", "channel", p.channel)
}

type nopPublisher struct{}

// NewNopPublisher is the fallback when Redis is disabled or unreachable.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, interface{}) {}
