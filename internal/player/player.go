package player

import (
	"context"
	"ctchen222/morpion/internal/apperror"
	"ctchen222/morpion/internal/validator"
	"ctchen222/morpion/pkg/proto"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("player")

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// CommandHandler executes one client command on behalf of a player.
type CommandHandler func(ctx context.Context, playerID string, msg proto.ClientToServerMessage) error

// Player represents a connected client. It is the notify.Sink of its
// websocket: every push event becomes one JSON text frame.
type Player struct {
	ID   string
	Conn Connection

	writeMu sync.Mutex
}

// NewPlayer wraps conn for playerID.
func NewPlayer(id string, conn Connection) *Player {
	return &Player{ID: id, Conn: conn}
}

func (p *Player) BoardChanged(ctx context.Context, board string) error {
	return p.Send(ctx, proto.Event{Type: proto.TypeBoard, Board: board})
}

func (p *Player) GameReady(ctx context.Context, mark string) error {
	return p.Send(ctx, proto.Event{Type: proto.TypeReady, Mark: mark})
}

func (p *Player) GameOver(ctx context.Context, winner string) error {
	return p.Send(ctx, proto.Event{Type: proto.TypeGameOver, Winner: winner})
}

func (p *Player) OpponentLeft(ctx context.Context) error {
	return p.Send(ctx, proto.Event{Type: proto.TypeOpponentLeft})
}

// Send writes v as one text frame. Writes are serialized because gorilla
// connections allow a single concurrent writer.
func (p *Player) Send(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal frame for player %s: %w", p.ID, err)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.DebugContext(ctx, "Write to player failed", "player.id", p.ID, "error", err)
		return fmt.Errorf("failed to write to player %s: %w", p.ID, err)
	}
	return nil
}

// ReadPump reads commands until the connection fails or ctx is done. Every
// command is validated, passed to handle, and answered with a proto.Reply.
func (p *Player) ReadPump(ctx context.Context, handle CommandHandler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		_, raw, err := p.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Unexpected websocket close", "player.id", p.ID, "error", err)
				return err
			}
			slog.InfoContext(ctx, "Player connection closed", "player.id", p.ID)
			return nil
		}
		p.handleMessage(ctx, raw, handle)
	}
}

func (p *Player) handleMessage(ctx context.Context, raw []byte, handle CommandHandler) {
	ctx, span := tracer.Start(ctx, "player.handleMessage", trace.WithAttributes(
		attribute.String("player.id", p.ID),
	))
	defer span.End()

	var msg proto.ClientToServerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		p.reply(ctx, "BAD_REQUEST", err)
		return
	}
	if err := validator.GetValidator().Struct(msg); err != nil {
		slog.WarnContext(ctx, "invalid message from player", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		p.reply(ctx, "BAD_REQUEST", err)
		return
	}
	if msg.Type == proto.CommandMove && len(msg.Position) != 2 {
		p.reply(ctx, apperror.Code(apperror.ErrOutOfRange), apperror.ErrOutOfRange)
		return
	}
	span.SetAttributes(attribute.String("message.type", msg.Type))

	err := handle(ctx, p.ID, msg)
	if err != nil && !apperror.IsRejection(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Command failed")
	}
	p.reply(ctx, apperror.Code(err), err)
}

func (p *Player) reply(ctx context.Context, code string, err error) {
	r := proto.Reply{Type: proto.TypeAck, Code: code}
	if err != nil {
		r.Type = proto.TypeError
		r.Reason = err.Error()
	}
	if sendErr := p.Send(ctx, r); sendErr != nil && !errors.Is(sendErr, websocket.ErrCloseSent) {
		slog.DebugContext(ctx, "Failed to reply to player", "player.id", p.ID, "error", sendErr)
	}
}
