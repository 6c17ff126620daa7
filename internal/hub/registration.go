package hub

import (
	"context"
	"ctchen222/morpion/internal/apperror"
	"ctchen222/morpion/internal/bot"
	"ctchen222/morpion/internal/events"
	"ctchen222/morpion/internal/notify"
	"ctchen222/morpion/internal/room"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CreateRoom opens a room with playerID as host and returns its id.
func (h *Hub) CreateRoom(ctx context.Context, playerID string, sink notify.Sink) (string, error) {
	ctx, span := tracer.Start(ctx, "hub.CreateRoom", trace.WithAttributes(
		attribute.String("player.id", playerID),
	))
	defer span.End()

	h.mu.Lock()
	if current, ok := h.playerRoom[playerID]; ok {
		h.mu.Unlock()
		err := fmt.Errorf("%w: %s", apperror.ErrAlreadyInRoom, current)
		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.Code(err))
		return "", err
	}
	roomID := h.newRoomIDLocked()
	r := room.NewRoom(roomID, playerID, sink, h.tracker, h.opts.Room)
	h.rooms[roomID] = r
	h.playerRoom[playerID] = roomID
	h.mu.Unlock()

	span.SetAttributes(attribute.String("room.id", roomID))
	h.metrics.roomCreated(ctx)
	slog.InfoContext(ctx, "Room created", "room.id", roomID, "player.id", playerID)
	h.publish(ctx, events.TypeRoomCreated, events.RoomCreatedPayload{RoomID: roomID, HostID: playerID})
	return roomID, nil
}

// JoinRoom seats playerID as the opponent in roomID.
func (h *Hub) JoinRoom(ctx context.Context, roomID, playerID string, sink notify.Sink) error {
	ctx, span := tracer.Start(ctx, "hub.JoinRoom", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	h.mu.RLock()
	r, ok := h.rooms[roomID]
	current, seated := h.playerRoom[playerID]
	h.mu.RUnlock()

	if !ok {
		return recordError(span, apperror.ErrNotFound)
	}
	if seated && current != roomID {
		return recordError(span, fmt.Errorf("%w: %s", apperror.ErrAlreadyInRoom, current))
	}

	if err := r.Join(ctx, playerID, sink); err != nil {
		return recordError(span, err)
	}

	h.mu.Lock()
	if h.rooms[roomID] != r {
		// Reaped between the join and now; the room is closed.
		h.mu.Unlock()
		return recordError(span, apperror.ErrNotFound)
	}
	if other, ok := h.playerRoom[playerID]; ok && other != roomID {
		h.mu.Unlock()
		// The player opened another room concurrently; give this seat back.
		if res, err := r.Disconnect(ctx, playerID); err != nil {
			slog.WarnContext(ctx, "Failed to undo concurrent join", "room.id", roomID, "player.id", playerID, "error", err)
		} else {
			h.forget(ctx, r, res, "abandoned")
		}
		return recordError(span, fmt.Errorf("%w: %s", apperror.ErrAlreadyInRoom, other))
	}
	h.playerRoom[playerID] = roomID
	h.mu.Unlock()

	h.publish(ctx, events.TypePlayerJoined, events.PlayerJoinedPayload{
		RoomID:    roomID,
		PlayerIDs: []string{r.Host(), playerID},
	})
	return nil
}

// AddBot seats a practice bot as the opponent in a waiting room and returns
// the bot's player id.
func (h *Hub) AddBot(ctx context.Context, roomID string, difficulty bot.Difficulty) (string, error) {
	ctx, span := tracer.Start(ctx, "hub.AddBot", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.String("bot.difficulty", string(difficulty)),
	))
	defer span.End()

	b := bot.NewPlayer(roomID, difficulty, h, h.opts.BotThinkTime)
	span.SetAttributes(attribute.String("player.id", b.ID))

	if err := h.JoinRoom(ctx, roomID, b.ID, b); err != nil {
		return "", recordError(span, err)
	}
	slog.InfoContext(ctx, "Bot joined room", "room.id", roomID, "player.id", b.ID, "bot.difficulty", difficulty)
	return b.ID, nil
}

// QuickMatch seats playerID in the oldest joinable room, or opens a new room
// when none accepts it. It reports whether a room was created.
func (h *Hub) QuickMatch(ctx context.Context, playerID string, sink notify.Sink) (string, bool, error) {
	ctx, span := tracer.Start(ctx, "hub.QuickMatch", trace.WithAttributes(
		attribute.String("player.id", playerID),
	))
	defer span.End()

	if current, ok := h.RoomOf(playerID); ok {
		return "", false, recordError(span, fmt.Errorf("%w: %s", apperror.ErrAlreadyInRoom, current))
	}

	for _, candidate := range h.ListJoinable(h.now()) {
		if candidate.Host == playerID {
			continue
		}
		err := h.JoinRoom(ctx, candidate.ID, playerID, sink)
		switch {
		case err == nil:
			span.SetAttributes(attribute.String("room.id", candidate.ID))
			slog.InfoContext(ctx, "Player matched", "room.id", candidate.ID, "player.id", playerID)
			return candidate.ID, false, nil
		case errors.Is(err, apperror.ErrRoomFull), errors.Is(err, apperror.ErrNotFound):
			// Taken or reaped since the listing.
			continue
		default:
			return "", false, recordError(span, err)
		}
	}

	roomID, err := h.CreateRoom(ctx, playerID, sink)
	if err != nil {
		return "", false, recordError(span, err)
	}
	return roomID, true, nil
}
