package server

import (
	"ctchen222/morpion/internal/notify"
	"ctchen222/morpion/internal/player"
	"sync"
)

// Connections tracks the live websocket of every player.
type Connections struct {
	mu      sync.RWMutex
	players map[string]*player.Player
}

func NewConnections() *Connections {
	return &Connections{players: make(map[string]*player.Player)}
}

// Add registers p and returns the connection it replaces, if any.
func (c *Connections) Add(p *player.Player) *player.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.players[p.ID]
	c.players[p.ID] = p
	return prev
}

// Remove unregisters p unless a newer connection already took its place.
// It reports whether p was the current connection.
func (c *Connections) Remove(p *player.Player) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.players[p.ID] != p {
		return false
	}
	delete(c.players, p.ID)
	return true
}

// Sink returns the player's live connection as a push sink, or nil.
func (c *Connections) Sink(playerID string) notify.Sink {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p, ok := c.players[playerID]; ok {
		return p
	}
	return nil
}

// Len returns the number of live connections.
func (c *Connections) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.players)
}
