package hub

import (
	"context"
	"ctchen222/morpion/internal/apperror"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const roomIDLength = 8

// newRoomIDLocked draws short upper-case ids until one is free. The caller
// holds the write lock, so the id cannot be taken before it is stored.
func (h *Hub) newRoomIDLocked() string {
	for {
		id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:roomIDLength])
		if _, taken := h.rooms[id]; !taken {
			return id
		}
	}
}

// publish mirrors an event. It runs after the command has released every
// lock; failures are logged and never surface to the caller.
func (h *Hub) publish(ctx context.Context, eventType string, payload any) {
	if err := h.publisher.Publish(ctx, eventType, payload); err != nil {
		slog.WarnContext(ctx, "Failed to publish event", "event.type", eventType, "error", err)
	}
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, apperror.Code(err))
	return err
}
