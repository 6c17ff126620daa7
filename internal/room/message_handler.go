package room

import (
	"context"
	"ctchen222/morpion/internal/apperror"
	"ctchen222/morpion/internal/game"
	"ctchen222/morpion/internal/notify"
	"ctchen222/morpion/internal/stats"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MoveResult describes the room right after an accepted move.
type MoveResult struct {
	Board    string
	Terminal bool
	// Winner is the winning player id, game.Draw for a draw, empty while running.
	Winner string
}

// DisconnectResult tells the registry which reverse mappings to drop.
type DisconnectResult struct {
	// Unmapped lists the player ids that no longer belong to this room.
	Unmapped []string
	// Closed is true when the room is gone and must be unregistered.
	Closed bool
}

// Move places the caller's mark at (row, col).
func (r *Room) Move(ctx context.Context, playerID string, row, col int) (MoveResult, error) {
	ctx, span := tracer.Start(ctx, "room.Move", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("player.id", playerID),
		attribute.Int("move.row", row),
		attribute.Int("move.col", col),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return MoveResult{}, recordRejection(span, apperror.ErrNotFound)
	}
	slot := r.slotOf(playerID)
	if slot < 0 {
		return MoveResult{}, recordRejection(span, apperror.ErrNotAParticipant)
	}
	if r.status == StatusWaiting {
		return MoveResult{}, recordRejection(span, apperror.ErrNotReady)
	}

	if err := r.board.ApplyMove(row, col, markForSlot(slot)); err != nil {
		slog.DebugContext(ctx, "Move rejected", "room.id", r.ID, "player.id", playerID, "code", apperror.Code(err))
		return MoveResult{}, recordRejection(span, err)
	}
	r.touch()

	res := MoveResult{Board: r.board.String()}
	r.broadcastBoard()

	if r.board.Terminal() {
		r.status = StatusCompleted
		r.winnerID = r.winnerLocked()
		res.Terminal = true
		res.Winner = r.winnerID
		r.recordResult(ctx)
		r.broadcast(notify.Event{Kind: notify.KindGameOver, RoomID: r.ID, Winner: r.winnerID})
		slog.InfoContext(ctx, "Game over", "room.id", r.ID, "winner", r.winnerID)
	}
	r.assertInvariants()

	return res, nil
}

// recordResult hands the finished game to the tracker.
func (r *Room) recordResult(ctx context.Context) {
	if r.tracker == nil {
		return
	}
	res := stats.Result{
		RoomID:  r.ID,
		PlayerX: r.slots[0].id,
		PlayerO: r.slots[1].id,
		Draw:    r.board.Result() == game.Draw,
	}
	if !res.Draw {
		res.Winner = r.winnerID
	}
	m := r.tracker.Record(res)
	slog.DebugContext(ctx, "Match recorded", "room.id", r.ID, "summary", m.Summary)
}

// Disconnect removes playerID from the room. When the room empties, or the
// host leaves under HostLeaveClose, the room is closed.
func (r *Room) Disconnect(ctx context.Context, playerID string) (DisconnectResult, error) {
	ctx, span := tracer.Start(ctx, "room.Disconnect", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return DisconnectResult{}, recordRejection(span, apperror.ErrNotFound)
	}
	slot := r.slotOf(playerID)
	if slot < 0 {
		return DisconnectResult{}, recordRejection(span, apperror.ErrNotAParticipant)
	}

	leaving := r.slots[slot]
	leaving.mailbox.Close()
	r.slots[slot] = nil

	survivor := r.slots[1-slot]
	if survivor == nil {
		r.closed = true
		slog.InfoContext(ctx, "Last player left, closing room", "room.id", r.ID, "player.id", playerID)
		return DisconnectResult{Unmapped: []string{playerID}, Closed: true}, nil
	}

	if slot == 0 && r.opts.HostLeavePolicy == HostLeaveClose {
		slog.InfoContext(ctx, "Host left, closing room", "room.id", r.ID, "player.id", playerID)
		unmapped := append([]string{playerID}, r.closeLocked(true)...)
		return DisconnectResult{Unmapped: unmapped, Closed: true}, nil
	}

	// The survivor always ends up as the host.
	r.slots[0], r.slots[1] = survivor, nil
	r.board.Reset()
	r.status = StatusWaiting
	r.winnerID = ""
	r.touch()

	survivor.mailbox.Post(notify.Event{Kind: notify.KindOpponentLeft, RoomID: r.ID})
	survivor.mailbox.Post(notify.Event{Kind: notify.KindBoard, RoomID: r.ID, Board: r.board.String()})
	r.assertInvariants()

	slog.InfoContext(ctx, "Player left room", "room.id", r.ID, "player.id", playerID, "host.id", survivor.id)
	return DisconnectResult{Unmapped: []string{playerID}}, nil
}

// Reset starts a fresh game with the same participants.
func (r *Room) Reset(ctx context.Context, playerID string) error {
	ctx, span := tracer.Start(ctx, "room.Reset", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return recordRejection(span, apperror.ErrNotFound)
	}
	if r.slotOf(playerID) < 0 {
		return recordRejection(span, apperror.ErrNotAParticipant)
	}

	r.board.Reset()
	r.winnerID = ""
	if r.slots[1] != nil {
		r.status = StatusInProgress
	} else {
		r.status = StatusWaiting
	}
	r.touch()
	r.broadcastBoard()
	r.assertInvariants()

	slog.InfoContext(ctx, "Room reset", "room.id", r.ID, "player.id", playerID, "status", r.status)
	return nil
}

// recordRejection marks the span and passes err through.
func recordRejection(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, apperror.Code(err))
	return err
}
