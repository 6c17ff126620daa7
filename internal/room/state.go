package room

import (
	"ctchen222/morpion/internal/apperror"
	"ctchen222/morpion/internal/game"
	"fmt"
	"time"
)

// Snapshot is a consistent copy of a room's state taken under its lock.
type Snapshot struct {
	ID           string
	Host         string
	Guest        string
	Status       Status
	Board        string
	Turn         game.PlayerMark
	Winner       string
	CreatedAt    time.Time
	LastActivity time.Time
}

// PlayerView is the room seen from one participant.
type PlayerView struct {
	RoomID   string          `json:"room_id"`
	Status   Status          `json:"status"`
	Symbol   game.PlayerMark `json:"symbol"`
	Opponent string          `json:"opponent,omitempty"`
	Ready    bool            `json:"ready"`
	Over     bool            `json:"over"`
	MyTurn   bool            `json:"my_turn"`
	Winner   string          `json:"winner,omitempty"`
	Board    string          `json:"board"`
}

// Snapshot returns the current state, or ErrNotFound once the room is closed.
func (r *Room) Snapshot() (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Snapshot{}, apperror.ErrNotFound
	}
	s := Snapshot{
		ID:           r.ID,
		Status:       r.status,
		Board:        r.board.String(),
		Turn:         r.board.Turn(),
		Winner:       r.winnerID,
		CreatedAt:    r.createdAt,
		LastActivity: r.lastActivity,
	}
	if r.slots[0] != nil {
		s.Host = r.slots[0].id
	}
	if r.slots[1] != nil {
		s.Guest = r.slots[1].id
	}
	return s, nil
}

// View answers the per-player queries in one locked read.
func (r *Room) View(playerID string) (PlayerView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return PlayerView{}, apperror.ErrNotFound
	}
	slot := r.slotOf(playerID)
	if slot < 0 {
		return PlayerView{}, apperror.ErrNotAParticipant
	}

	v := PlayerView{
		RoomID: r.ID,
		Status: r.status,
		Symbol: markForSlot(slot),
		Ready:  r.status != StatusWaiting,
		Over:   r.status == StatusCompleted,
		Winner: r.winnerID,
		Board:  r.board.String(),
	}
	v.MyTurn = v.Ready && !v.Over && r.board.Turn() == v.Symbol
	if other := r.slots[1-slot]; other != nil {
		v.Opponent = other.id
	}
	return v, nil
}

// Board returns the serialized board.
func (r *Room) Board() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", apperror.ErrNotFound
	}
	return r.board.String(), nil
}

// Host returns the id occupying the first slot.
func (r *Room) Host() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots[0] == nil {
		return ""
	}
	return r.slots[0].id
}

// IsJoinable reports whether the room waits for an opponent and has been
// active within timeout.
func (r *Room) IsJoinable(now time.Time, timeout time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed && r.status == StatusWaiting && now.Sub(r.lastActivity) <= timeout
}

// winnerLocked maps the board result to a player id.
func (r *Room) winnerLocked() string {
	switch res := r.board.Result(); res {
	case game.ResultNone:
		return ""
	case game.Draw:
		return string(game.Draw)
	default:
		for i, p := range r.slots {
			if p != nil && markForSlot(i) == game.PlayerMark(res) {
				return p.id
			}
		}
		return ""
	}
}

// checkInvariants verifies the status against the slots and the board.
func (r *Room) checkInvariants() error {
	if r.closed {
		return nil
	}
	if r.slots[0] == nil {
		return fmt.Errorf("room %s: open room without host", r.ID)
	}
	if r.slots[1] != nil && r.slots[0].id == r.slots[1].id {
		return fmt.Errorf("room %s: player %s holds both slots", r.ID, r.slots[0].id)
	}
	switch {
	case r.slots[1] == nil && r.status != StatusWaiting:
		return fmt.Errorf("room %s: status %s with an empty guest slot", r.ID, r.status)
	case r.slots[1] != nil && r.status == StatusWaiting:
		return fmt.Errorf("room %s: status WAITING with both slots set", r.ID)
	case r.board.Terminal() && r.status != StatusCompleted:
		return fmt.Errorf("room %s: terminal board with status %s", r.ID, r.status)
	case !r.board.Terminal() && r.status == StatusCompleted:
		return fmt.Errorf("room %s: status COMPLETED on a running board", r.ID)
	}
	return r.board.CheckInvariants()
}

// assertInvariants panics on a violated invariant unless built for release.
func (r *Room) assertInvariants() {
	if !assertionsEnabled {
		return
	}
	if err := r.checkInvariants(); err != nil {
		panic(err)
	}
}
