package hub

import (
	"context"
	"ctchen222/morpion/internal/events"
	"ctchen222/morpion/internal/room"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Run reaps inactive rooms every ReapInterval until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.opts.ReapInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Room reaper started", "interval", h.opts.ReapInterval.String(), "timeout", h.opts.InactivityTimeout.String())
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Room reaper stopped")
			return
		case <-ticker.C:
			h.Reap(ctx, h.now())
		}
	}
}

// Reap closes and unregisters every room idle for longer than the inactivity
// timeout, and returns how many were removed.
//
// The room set is snapshotted under the read lock, each room re-checks its
// own idleness under its own lock, and only then are the closed rooms removed
// under the write lock. A command racing the sweep either lands before the
// room closes, which refreshes its activity, or fails with NOT_FOUND.
func (h *Hub) Reap(ctx context.Context, now time.Time) int {
	ctx, span := tracer.Start(ctx, "hub.Reap")
	defer span.End()

	type closedRoom struct {
		r         *room.Room
		occupants []string
	}
	var closed []closedRoom
	for _, r := range h.snapshot() {
		if occupants, ok := r.CloseIfIdle(ctx, now, h.opts.InactivityTimeout); ok {
			closed = append(closed, closedRoom{r: r, occupants: occupants})
		}
	}
	if len(closed) == 0 {
		return 0
	}

	removed := make([]string, 0, len(closed))
	h.mu.Lock()
	for _, c := range closed {
		for _, id := range c.occupants {
			if h.playerRoom[id] == c.r.ID {
				delete(h.playerRoom, id)
			}
		}
		if h.rooms[c.r.ID] == c.r {
			delete(h.rooms, c.r.ID)
			removed = append(removed, c.r.ID)
		}
	}
	h.mu.Unlock()

	span.SetAttributes(attribute.Int("rooms.reaped", len(removed)))
	for _, id := range removed {
		h.metrics.roomClosed(ctx, "inactive")
		h.publish(ctx, events.TypeRoomClosed, events.RoomClosedPayload{RoomID: id, Reason: "inactive"})
	}
	slog.InfoContext(ctx, "Reaped inactive rooms", "count", len(removed), "rooms", removed)
	return len(removed)
}

// Shutdown closes every room without notifying participants.
func (h *Hub) Shutdown(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "hub.Shutdown", trace.WithAttributes(
		attribute.Int("rooms.count", h.Len()),
	))
	defer span.End()

	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*room.Room)
	h.playerRoom = make(map[string]string)
	h.mu.Unlock()

	for _, r := range rooms {
		r.Shutdown()
		h.metrics.roomClosed(ctx, "shutdown")
	}
}
