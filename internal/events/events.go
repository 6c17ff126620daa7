package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("events")

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types
const (
	TypeRoomCreated        = "room_created"
	TypePlayerJoined       = "player_joined"
	TypeGameOver           = "game_over"
	TypeRoomReset          = "room_reset"
	TypePlayerDisconnected = "player_disconnected"
	TypeRoomClosed         = "room_closed"
)

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// RoomCreatedPayload is the payload for the "room_created" event.
type RoomCreatedPayload struct {
	RoomID string `json:"room_id"`
	HostID string `json:"host_id"`
}

// PlayerJoinedPayload is the payload for the "player_joined" event.
type PlayerJoinedPayload struct {
	RoomID    string   `json:"room_id"`
	PlayerIDs []string `json:"player_ids"`
}

// GameOverPayload is the payload for the "game_over" event.
type GameOverPayload struct {
	RoomID string `json:"room_id"`
	Winner string `json:"winner"`
	Board  string `json:"board"`
}

// RoomResetPayload is the payload for the "room_reset" event.
type RoomResetPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

// PlayerDisconnectedPayload is the payload for the "player_disconnected" event.
type PlayerDisconnectedPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

// RoomClosedPayload is the payload for the "room_closed" event.
type RoomClosedPayload struct {
	RoomID string `json:"room_id"`
	Reason string `json:"reason"`
}

// Publisher mirrors room lifecycle events to the outside world.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// Encode wraps payload into an Event and marshals it.
func Encode(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	data, err := json.Marshal(Event{Type: eventType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

// RedisPublisher publishes events on EventsChannel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher creates a publisher on the default events channel.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: EventsChannel}
}

func (p *RedisPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	ctx, span := tracer.Start(ctx, "events.Publish", trace.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.String("event.channel", p.channel),
	))
	defer span.End()

	data, err := Encode(eventType, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to encode event")
		return err
	}

	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish event")
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// Subscribe calls handle for every event on EventsChannel until ctx is done.
// Malformed messages are logged and skipped.
func Subscribe(ctx context.Context, rdb *redis.Client, handle func(context.Context, Event)) error {
	pubsub := rdb.Subscribe(ctx, EventsChannel)
	defer pubsub.Close()

	// Wait for the subscription to be confirmed before reading.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", EventsChannel, err)
	}
	slog.InfoContext(ctx, "Event subscriber started", "channel", EventsChannel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			eventCtx, eventSpan := tracer.Start(ctx, "events.handle", trace.WithAttributes(
				attribute.String("event.channel", msg.Channel),
			))

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(eventCtx, "Could not unmarshal event", "error", err)
				eventSpan.RecordError(err)
				eventSpan.SetStatus(codes.Error, "Could not unmarshal event")
				eventSpan.End()
				continue
			}
			eventSpan.SetAttributes(attribute.String("event.type", event.Type))
			handle(eventCtx, event)
			eventSpan.End()
		}
	}
}
