// Package notify delivers room events to the participants' sinks.
//
// Rooms post events into a per-participant Mailbox while they still hold their
// own lock, which fixes the order of events to the order of commands. The
// mailbox goroutine performs the actual delivery after the lock is released,
// so a slow or failing sink never stalls the room.
package notify

//go:generate mockgen -destination=mocks/mock_sink.go -package=mocks ctchen222/morpion/internal/notify Sink

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("notify")

// DefaultMailboxSize is the queue length used when none is configured.
const DefaultMailboxSize = 64

// Sink is the destination of one participant's push events. Delivery is fire
// and forget: a returned error is logged and otherwise ignored.
type Sink interface {
	BoardChanged(ctx context.Context, board string) error
	GameReady(ctx context.Context, mark string) error
	GameOver(ctx context.Context, winner string) error
	OpponentLeft(ctx context.Context) error
}

// Kind names a push event.
type Kind string

const (
	KindBoard        Kind = "board"
	KindReady        Kind = "ready"
	KindGameOver     Kind = "game_over"
	KindOpponentLeft Kind = "opponent_left"
)

// Event is a single push destined for one sink.
type Event struct {
	Kind   Kind
	RoomID string
	Board  string
	Mark   string
	Winner string
}

// Deliver calls the sink method matching ev.Kind.
func Deliver(ctx context.Context, sink Sink, ev Event) error {
	switch ev.Kind {
	case KindBoard:
		return sink.BoardChanged(ctx, ev.Board)
	case KindReady:
		return sink.GameReady(ctx, ev.Mark)
	case KindGameOver:
		return sink.GameOver(ctx, ev.Winner)
	case KindOpponentLeft:
		return sink.OpponentLeft(ctx)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

// Mailbox queues events for one participant and delivers them in order from
// its own goroutine.
type Mailbox struct {
	playerID string
	sink     Sink
	queue    chan Event
	done     chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewMailbox starts the delivery goroutine for sink. A nil sink yields a nil
// mailbox, on which every method is a no-op.
func NewMailbox(playerID string, sink Sink, size int) *Mailbox {
	if sink == nil {
		return nil
	}
	if size <= 0 {
		size = DefaultMailboxSize
	}
	m := &Mailbox{
		playerID: playerID,
		sink:     sink,
		queue:    make(chan Event, size),
		done:     make(chan struct{}),
	}
	go m.run()
	return m
}

// Post enqueues ev without blocking. It reports false when the event was
// dropped because the mailbox is closed or full.
func (m *Mailbox) Post(ev Event) bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false
	}

	select {
	case m.queue <- ev:
		return true
	default:
		slog.Warn("mailbox full, dropping event", "player.id", m.playerID, "room.id", ev.RoomID, "event.kind", ev.Kind)
		return false
	}
}

// Close stops accepting events. Already queued events are still delivered.
func (m *Mailbox) Close() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.queue)
}

// Done is closed once every queued event has been delivered after Close.
func (m *Mailbox) Done() <-chan struct{} {
	if m == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return m.done
}

func (m *Mailbox) run() {
	defer close(m.done)
	for ev := range m.queue {
		m.deliver(ev)
	}
}

func (m *Mailbox) deliver(ev Event) {
	ctx, span := tracer.Start(context.Background(), "notify.deliver", trace.WithAttributes(
		attribute.String("player.id", m.playerID),
		attribute.String("room.id", ev.RoomID),
		attribute.String("event.kind", string(ev.Kind)),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "sink panicked during delivery", "player.id", m.playerID, "event.kind", ev.Kind, "panic", r)
			span.SetStatus(codes.Error, "Sink panicked")
		}
	}()

	if err := Deliver(ctx, m.sink, ev); err != nil {
		slog.WarnContext(ctx, "failed to deliver event to player", "player.id", m.playerID, "room.id", ev.RoomID, "event.kind", ev.Kind, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to deliver event")
	}
}
