package models

import (
	"ctchen222/morpion/internal/room"
	"ctchen222/morpion/internal/stats"
)

// GuestRequest defines the structure for a guest login request. Name is
// optional; a random id is issued when it is empty. DRAW is the draw marker
// on game_over and cannot name a player.
type GuestRequest struct {
	Name string `json:"name" binding:"omitempty,alphanum,min=3,max=20,ne_ignore_case=DRAW"`
}

// GuestResponse carries the issued identity.
type GuestResponse struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

// MoveRequest defines a move. Pointers distinguish a missing coordinate
// from zero.
type MoveRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

// BotRequest selects the practice bot's strength.
type BotRequest struct {
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// RoomResponse is returned by create and join.
type RoomResponse struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id,omitempty"`
}

// StateResponse answers the per-player room queries.
type StateResponse = room.PlayerView

// StatsResponse carries a player's record.
type StatsResponse struct {
	PlayerID string `json:"player_id"`
	stats.Counts
}
