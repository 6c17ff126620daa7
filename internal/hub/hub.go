package hub

import (
	"ctchen222/morpion/internal/apperror"
	"ctchen222/morpion/internal/events"
	"ctchen222/morpion/internal/hub/types"
	"ctchen222/morpion/internal/room"
	"ctchen222/morpion/internal/stats"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("hub")

const (
	DefaultInactivityTimeout = 10 * time.Minute
	DefaultReapInterval      = 30 * time.Second
)

// Options configures the registry and the rooms it creates.
type Options struct {
	InactivityTimeout time.Duration
	ReapInterval      time.Duration
	BotThinkTime      time.Duration
	Room              room.Options
	// MeterProvider records room counts. Nil uses the global provider.
	MeterProvider metric.MeterProvider
}

// Hub is the room registry: the single owner of the room id → room and
// player id → room id maps.
//
// Lock order: the registry lock is never held while a room lock is taken,
// and rooms never call back into the registry.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*room.Room
	playerRoom map[string]string

	tracker   *stats.Tracker
	publisher events.Publisher
	metrics   *metrics
	opts      Options
}

// NewHub creates an empty registry. A nil publisher disables event mirroring.
func NewHub(tracker *stats.Tracker, publisher events.Publisher, opts Options) *Hub {
	if opts.InactivityTimeout <= 0 {
		opts.InactivityTimeout = DefaultInactivityTimeout
	}
	if opts.ReapInterval <= 0 {
		opts.ReapInterval = DefaultReapInterval
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if tracker == nil {
		tracker = stats.NewTracker()
	}
	return &Hub{
		rooms:      make(map[string]*room.Room),
		playerRoom: make(map[string]string),
		tracker:    tracker,
		publisher:  publisher,
		metrics:    newMetrics(opts.MeterProvider),
		opts:       opts,
	}
}

func (h *Hub) now() time.Time {
	if h.opts.Room.Now != nil {
		return h.opts.Room.Now()
	}
	return time.Now()
}

// Resolve returns the room addressed by roomID, or the caller's current room
// when roomID is empty.
func (h *Hub) Resolve(roomID, playerID string) (*room.Room, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if roomID == "" {
		id, ok := h.playerRoom[playerID]
		if !ok {
			return nil, apperror.ErrNotConnected
		}
		roomID = id
	}
	r, ok := h.rooms[roomID]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return r, nil
}

// RoomOf returns the id of the room playerID is seated in.
func (h *Hub) RoomOf(playerID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	id, ok := h.playerRoom[playerID]
	return id, ok
}

// Len returns the number of registered rooms.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Board returns the serialized board of roomID.
func (h *Hub) Board(roomID string) (string, error) {
	r, err := h.Resolve(roomID, "")
	if err != nil {
		return "", err
	}
	return r.Board()
}

// RoomState answers the per-player queries (ready, over, turn, symbol,
// opponent, winner) for the addressed room.
func (h *Hub) RoomState(roomID, playerID string) (room.PlayerView, error) {
	r, err := h.Resolve(roomID, playerID)
	if err != nil {
		return room.PlayerView{}, err
	}
	return r.View(playerID)
}

// Stats returns the player's win/loss/draw counters.
func (h *Hub) Stats(playerID string) stats.Counts {
	return h.tracker.Stats(playerID)
}

// History returns the matches the player took part in.
func (h *Hub) History(playerID string) []stats.Match {
	return h.tracker.History(playerID)
}

// ListJoinable returns the rooms waiting for an opponent that are not past
// the inactivity timeout, oldest first.
func (h *Hub) ListJoinable(now time.Time) []types.JoinableRoom {
	rooms := h.snapshot()

	out := make([]types.JoinableRoom, 0)
	for _, r := range rooms {
		if !r.IsJoinable(now, h.opts.InactivityTimeout) {
			continue
		}
		s, err := r.Snapshot()
		if err != nil || s.Status != room.StatusWaiting {
			continue
		}
		out = append(out, types.JoinableRoom{ID: s.ID, Host: s.Host, CreatedAt: s.CreatedAt})
	}

	slices.SortFunc(out, func(a, b types.JoinableRoom) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// snapshot copies the current room set so it can be walked without the
// registry lock.
func (h *Hub) snapshot() []*room.Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rooms := make([]*room.Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}
