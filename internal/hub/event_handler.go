package hub

import (
	"context"
	"ctchen222/morpion/internal/events"
	"ctchen222/morpion/internal/hub/types"
	"ctchen222/morpion/internal/notify"
	"ctchen222/morpion/internal/room"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Move plays (row, col) for playerID. An empty roomID routes the move to the
// player's current room.
func (h *Hub) Move(ctx context.Context, roomID, playerID string, row, col int) (types.MoveOutcome, error) {
	ctx, span := tracer.Start(ctx, "hub.Move", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	r, err := h.Resolve(roomID, playerID)
	if err != nil {
		return types.MoveOutcome{}, recordError(span, err)
	}

	res, err := r.Move(ctx, playerID, row, col)
	if err != nil {
		return types.MoveOutcome{}, err
	}

	out := types.MoveOutcome{RoomID: r.ID, Board: res.Board, Over: res.Terminal, Winner: res.Winner}
	if res.Terminal {
		h.publish(ctx, events.TypeGameOver, events.GameOverPayload{RoomID: r.ID, Winner: res.Winner, Board: res.Board})
	}
	return out, nil
}

// MoveInRoom is Move without the outcome, for bots.
func (h *Hub) MoveInRoom(ctx context.Context, roomID, playerID string, row, col int) error {
	_, err := h.Move(ctx, roomID, playerID, row, col)
	return err
}

// Reset starts a new game in the addressed room.
func (h *Hub) Reset(ctx context.Context, roomID, playerID string) error {
	ctx, span := tracer.Start(ctx, "hub.Reset", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	r, err := h.Resolve(roomID, playerID)
	if err != nil {
		return recordError(span, err)
	}
	if err := r.Reset(ctx, playerID); err != nil {
		return err
	}
	h.publish(ctx, events.TypeRoomReset, events.RoomResetPayload{RoomID: r.ID, PlayerID: playerID})
	return nil
}

// Disconnect removes playerID from the addressed room and drops the room
// when it is closed as a result.
func (h *Hub) Disconnect(ctx context.Context, roomID, playerID string) error {
	ctx, span := tracer.Start(ctx, "hub.Disconnect", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	r, err := h.Resolve(roomID, playerID)
	if err != nil {
		return recordError(span, err)
	}
	res, err := r.Disconnect(ctx, playerID)
	if err != nil {
		return err
	}

	h.publish(ctx, events.TypePlayerDisconnected, events.PlayerDisconnectedPayload{RoomID: r.ID, PlayerID: playerID})
	h.forget(ctx, r, res, "empty")
	return nil
}

// Leave is Disconnect for bots.
func (h *Hub) Leave(ctx context.Context, roomID, playerID string) error {
	return h.Disconnect(ctx, roomID, playerID)
}

// AttachSink registers the push destination of playerID in its current room.
func (h *Hub) AttachSink(ctx context.Context, playerID string, sink notify.Sink) error {
	r, err := h.Resolve("", playerID)
	if err != nil {
		return err
	}
	if err := r.AttachSink(playerID, sink); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Sink attached", "room.id", r.ID, "player.id", playerID)
	return nil
}

// forget drops the reverse entries the room gave up and, when the room is
// closed, the room itself. Entries are only removed while they still point
// at this room.
func (h *Hub) forget(ctx context.Context, r *room.Room, res room.DisconnectResult, reason string) {
	h.mu.Lock()
	for _, id := range res.Unmapped {
		if h.playerRoom[id] == r.ID {
			delete(h.playerRoom, id)
		}
	}
	removed := false
	if res.Closed && h.rooms[r.ID] == r {
		delete(h.rooms, r.ID)
		removed = true
	}
	h.mu.Unlock()

	if removed {
		h.metrics.roomClosed(ctx, reason)
		slog.InfoContext(ctx, "Room removed", "room.id", r.ID, "reason", reason)
		h.publish(ctx, events.TypeRoomClosed, events.RoomClosedPayload{RoomID: r.ID, Reason: reason})
	}
}
