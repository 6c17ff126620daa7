package types

import "time"

// JoinableRoom is one entry of the lobby listing.
type JoinableRoom struct {
	ID        string    `json:"room_id"`
	Host      string    `json:"host"`
	CreatedAt time.Time `json:"created_at"`
}

// MoveOutcome is what a caller learns about an accepted move.
type MoveOutcome struct {
	RoomID string `json:"room_id"`
	Board  string `json:"board"`
	Over   bool   `json:"over"`
	Winner string `json:"winner,omitempty"`
}
