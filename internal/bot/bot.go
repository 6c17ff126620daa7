package bot

import (
	"context"
	"ctchen222/morpion/internal/apperror"
	"ctchen222/morpion/internal/game"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mover is the slice of the registry a bot needs to play.
type Mover interface {
	MoveInRoom(ctx context.Context, roomID, playerID string, row, col int) error
	Leave(ctx context.Context, roomID, playerID string) error
}

// Player is a practice opponent. It is a notify.Sink: every board it
// receives is a chance to move, and it answers through the Mover.
type Player struct {
	ID         string
	roomID     string
	difficulty Difficulty
	mover      Mover
	think      time.Duration

	mu   sync.Mutex
	mark game.PlayerMark
}

// NewPlayer creates a bot for roomID.
func NewPlayer(roomID string, difficulty Difficulty, mover Mover, think time.Duration) *Player {
	return &Player{
		ID:         "bot-" + uuid.New().String()[:8],
		roomID:     roomID,
		difficulty: difficulty,
		mover:      mover,
		think:      think,
	}
}

// Mark returns the mark the bot was assigned, empty before the game starts.
func (p *Player) Mark() game.PlayerMark {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mark
}

func (p *Player) GameReady(ctx context.Context, mark string) error {
	p.mu.Lock()
	p.mark = game.PlayerMark(mark)
	p.mu.Unlock()
	slog.DebugContext(ctx, "Bot assigned mark", "player.id", p.ID, "room.id", p.roomID, "mark", mark)
	return nil
}

func (p *Player) BoardChanged(ctx context.Context, board string) error {
	mark := p.Mark()
	if mark == game.None {
		return nil
	}

	cells, err := game.ParseBoard(board)
	if err != nil {
		return err
	}
	if !turnOf(cells, mark) {
		return nil
	}

	if p.think > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.think):
		}
	}

	row, col := CalculateNextMove(cells, mark, p.difficulty)
	if row == -1 {
		return nil
	}
	err = p.mover.MoveInRoom(ctx, p.roomID, p.ID, row, col)
	// The board may be stale by the time the move lands; a validation
	// rejection just means a newer board is already on its way.
	if err != nil && !apperror.IsRejection(err) {
		return err
	}
	return nil
}

func (p *Player) GameOver(ctx context.Context, winner string) error {
	slog.DebugContext(ctx, "Bot game over", "player.id", p.ID, "room.id", p.roomID, "winner", winner)
	return nil
}

// OpponentLeft makes the bot leave the room as well.
func (p *Player) OpponentLeft(ctx context.Context) error {
	err := p.mover.Leave(ctx, p.roomID, p.ID)
	if err != nil && !apperror.IsRejection(err) {
		return err
	}
	return nil
}

// turnOf guesses whether mark moves next on a running board. Both marks may
// start, so a balanced board means either player could be next; the bot tries
// and lets the room reject the move if it was wrong.
func turnOf(cells [3][3]game.PlayerMark, mark game.PlayerMark) bool {
	mine, theirs := 0, 0
	for _, row := range cells {
		for _, cell := range row {
			switch cell {
			case mark:
				mine++
			case game.Opponent(mark):
				theirs++
			}
		}
	}
	return mine <= theirs && mine+theirs < 9
}
