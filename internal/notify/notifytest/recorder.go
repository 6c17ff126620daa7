// Package notifytest provides a recording notify.Sink for tests.
package notifytest

import (
	"context"
	"ctchen222/morpion/internal/notify"
	"sync"
)

// Recorder stores every event it receives. Err, when set, is returned from
// every call after the event has been recorded.
type Recorder struct {
	mu     sync.Mutex
	events []notify.Event
	Err    error
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.Err
}

func (r *Recorder) BoardChanged(_ context.Context, board string) error {
	return r.add(notify.Event{Kind: notify.KindBoard, Board: board})
}

func (r *Recorder) GameReady(_ context.Context, mark string) error {
	return r.add(notify.Event{Kind: notify.KindReady, Mark: mark})
}

func (r *Recorder) GameOver(_ context.Context, winner string) error {
	return r.add(notify.Event{Kind: notify.KindGameOver, Winner: winner})
}

func (r *Recorder) OpponentLeft(_ context.Context) error {
	return r.add(notify.Event{Kind: notify.KindOpponentLeft})
}

// Events returns a copy of everything received so far.
func (r *Recorder) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds received so far, in order.
func (r *Recorder) Kinds() []notify.Kind {
	events := r.Events()
	out := make([]notify.Kind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

// Last returns the most recent event of the given kind.
func (r *Recorder) Last(kind notify.Kind) (notify.Event, bool) {
	events := r.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == kind {
			return events[i], true
		}
	}
	return notify.Event{}, false
}

// Count returns how many events of the given kind were received.
func (r *Recorder) Count(kind notify.Kind) int {
	n := 0
	for _, ev := range r.Events() {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
