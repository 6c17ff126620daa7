package room

import (
	"context"
	"ctchen222/morpion/internal/apperror"
	"ctchen222/morpion/internal/game"
	"ctchen222/morpion/internal/notify"
	"ctchen222/morpion/internal/stats"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("room")

// Status is the lifecycle state of a room.
type Status string

const (
	StatusWaiting    Status = "WAITING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// HostLeavePolicy decides what happens when the creator leaves while a guest
// is still seated.
type HostLeavePolicy string

const (
	// HostLeaveTransfer hands the host slot to the guest and waits for a new opponent.
	HostLeaveTransfer HostLeavePolicy = "transfer"
	// HostLeaveClose tears the room down.
	HostLeaveClose HostLeavePolicy = "close"
)

// ParseHostLeavePolicy validates a configured policy name.
func ParseHostLeavePolicy(s string) (HostLeavePolicy, error) {
	switch p := HostLeavePolicy(s); p {
	case HostLeaveTransfer, HostLeaveClose:
		return p, nil
	case "":
		return HostLeaveTransfer, nil
	default:
		return "", fmt.Errorf("unknown host leave policy %q", s)
	}
}

// ResultRecorder receives every finished game.
type ResultRecorder interface {
	Record(res stats.Result) stats.Match
}

// Options configures a room.
type Options struct {
	StartingMarker  game.StartingMarker
	HostLeavePolicy HostLeavePolicy
	MailboxSize     int
	Now             func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

type participant struct {
	id      string
	mailbox *notify.Mailbox
}

// Room is one two-player game session. Every exported method takes the room
// lock, so commands against the same room are serialized while different
// rooms never contend.
type Room struct {
	ID string

	mu           sync.Mutex
	slots        [2]*participant
	board        *game.Board
	status       Status
	winnerID     string
	createdAt    time.Time
	lastActivity time.Time
	closed       bool

	opts    Options
	tracker ResultRecorder
}

// NewRoom creates a room with hostID seated in the first slot.
func NewRoom(id, hostID string, sink notify.Sink, tracker ResultRecorder, opts Options) *Room {
	now := opts.now()
	r := &Room{
		ID:           id,
		board:        game.NewBoard(opts.StartingMarker),
		status:       StatusWaiting,
		createdAt:    now,
		lastActivity: now,
		opts:         opts,
		tracker:      tracker,
	}
	r.slots[0] = r.newParticipant(hostID, sink)
	return r
}

func (r *Room) newParticipant(playerID string, sink notify.Sink) *participant {
	return &participant{
		id:      playerID,
		mailbox: notify.NewMailbox(playerID, sink, r.opts.MailboxSize),
	}
}

// Join seats playerID in the second slot and starts the game.
func (r *Room) Join(ctx context.Context, playerID string, sink notify.Sink) error {
	ctx, span := tracer.Start(ctx, "room.Join", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return recordRejection(span, apperror.ErrNotFound)
	}
	if r.slots[0] != nil && r.slots[0].id == playerID {
		return recordRejection(span, apperror.ErrAlreadyOccupied)
	}
	if r.slots[1] != nil {
		return recordRejection(span, apperror.ErrRoomFull)
	}

	r.slots[1] = r.newParticipant(playerID, sink)
	r.status = StatusInProgress
	r.touch()

	for i, p := range r.slots {
		p.mailbox.Post(notify.Event{Kind: notify.KindReady, RoomID: r.ID, Mark: string(markForSlot(i))})
	}
	r.broadcastBoard()
	r.assertInvariants()

	slog.InfoContext(ctx, "Player joined room", "room.id", r.ID, "player.id", playerID, "host.id", r.slots[0].id)
	return nil
}

// AttachSink registers or replaces the sink of a seated participant.
func (r *Room) AttachSink(playerID string, sink notify.Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return apperror.ErrNotFound
	}
	i := r.slotOf(playerID)
	if i < 0 {
		return apperror.ErrNotAParticipant
	}

	r.slots[i].mailbox.Close()
	r.slots[i].mailbox = notify.NewMailbox(playerID, sink, r.opts.MailboxSize)
	r.slots[i].mailbox.Post(notify.Event{Kind: notify.KindBoard, RoomID: r.ID, Board: r.board.String()})
	return nil
}

// CloseIfIdle closes the room when it has seen no command for longer than
// timeout. Remaining participants are told their opponent is gone. It
// returns the ids that were seated and whether the room is now closed.
func (r *Room) CloseIfIdle(ctx context.Context, now time.Time, timeout time.Duration) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, true
	}
	if now.Sub(r.lastActivity) <= timeout {
		return nil, false
	}

	slog.InfoContext(ctx, "Closing inactive room", "room.id", r.ID, "idle", now.Sub(r.lastActivity).String())
	return r.closeLocked(true), true
}

// Shutdown closes the room without notifying anyone.
func (r *Room) Shutdown() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	return r.closeLocked(false)
}

// closeLocked marks the room closed, optionally sends opponent_left to every
// seated participant, and returns their ids.
func (r *Room) closeLocked(notifyLeft bool) []string {
	r.closed = true
	ids := make([]string, 0, 2)
	for i, p := range r.slots {
		if p == nil {
			continue
		}
		if notifyLeft {
			p.mailbox.Post(notify.Event{Kind: notify.KindOpponentLeft, RoomID: r.ID})
		}
		p.mailbox.Close()
		ids = append(ids, p.id)
		r.slots[i] = nil
	}
	return ids
}

func (r *Room) touch() {
	r.lastActivity = r.opts.now()
}
