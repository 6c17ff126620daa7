// Package stats keeps per-player win/loss/draw counters and the match log for
// the lifetime of the process.
package stats

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Counts is a snapshot of one player's record.
type Counts struct {
	Wins   int64 `json:"wins"`
	Losses int64 `json:"losses"`
	Draws  int64 `json:"draws"`
}

// Result describes a finished game. Draw is decided by the board, never by
// comparing ids, so any player id may win. Winner is ignored for a draw.
type Result struct {
	RoomID  string
	PlayerX string
	PlayerO string
	Winner  string
	Draw    bool
}

// Match is one entry of the append-only match log.
type Match struct {
	RoomID   string    `json:"room_id"`
	Players  [2]string `json:"players"`
	Winner   string    `json:"winner,omitempty"`
	Draw     bool      `json:"draw"`
	Summary  string    `json:"summary"`
	Finished time.Time `json:"finished_at"`
}

type record struct {
	wins   atomic.Int64
	losses atomic.Int64
	draws  atomic.Int64
}

// Tracker is shared by every room.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]*record

	logMu   sync.RWMutex
	history []Match

	now func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// Record updates both players' counters and appends the summary line.
func (t *Tracker) Record(res Result) Match {
	x, o := t.recordFor(res.PlayerX), t.recordFor(res.PlayerO)

	var summary string
	switch {
	case res.Draw:
		res.Winner = ""
		x.draws.Add(1)
		o.draws.Add(1)
		summary = fmt.Sprintf("Draw between %s and %s", res.PlayerX, res.PlayerO)
	case res.Winner == res.PlayerX:
		x.wins.Add(1)
		o.losses.Add(1)
		summary = fmt.Sprintf("%s won against %s", res.PlayerX, res.PlayerO)
	default:
		o.wins.Add(1)
		x.losses.Add(1)
		summary = fmt.Sprintf("%s won against %s", res.PlayerO, res.PlayerX)
	}

	m := Match{
		RoomID:   res.RoomID,
		Players:  [2]string{res.PlayerX, res.PlayerO},
		Winner:   res.Winner,
		Draw:     res.Draw,
		Summary:  summary,
		Finished: t.now(),
	}

	t.logMu.Lock()
	t.history = append(t.history, m)
	t.logMu.Unlock()

	return m
}

// recordFor lazily creates the record on first completion.
func (t *Tracker) recordFor(playerID string) *record {
	t.mu.RLock()
	r, ok := t.records[playerID]
	t.mu.RUnlock()
	if ok {
		return r
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok = t.records[playerID]; !ok {
		r = &record{}
		t.records[playerID] = r
	}
	return r
}

// Stats returns the player's counters; unknown players have a zero record.
func (t *Tracker) Stats(playerID string) Counts {
	t.mu.RLock()
	r, ok := t.records[playerID]
	t.mu.RUnlock()
	if !ok {
		return Counts{}
	}
	return Counts{
		Wins:   r.wins.Load(),
		Losses: r.losses.Load(),
		Draws:  r.draws.Load(),
	}
}

// History returns, in completion order, the matches the player took part in.
func (t *Tracker) History(playerID string) []Match {
	t.logMu.RLock()
	defer t.logMu.RUnlock()

	out := make([]Match, 0)
	for _, m := range t.history {
		if slices.Contains(m.Players[:], playerID) {
			out = append(out, m)
		}
	}
	return out
}

// Len returns the number of logged matches.
func (t *Tracker) Len() int {
	t.logMu.RLock()
	defer t.logMu.RUnlock()
	return len(t.history)
}
