package proto

// Push event types.
const (
	TypeBoard        = "board"
	TypeReady        = "ready"
	TypeGameOver     = "game_over"
	TypeOpponentLeft = "opponent_left"
	TypeError        = "error"
	TypeAck          = "ack"
)

// Client command types.
const (
	CommandMove  = "move"
	CommandReset = "reset"
	CommandLeave = "leave"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type     string `json:"type" validate:"required,oneof=move reset leave"`
	Position []int  `json:"position,omitempty" validate:"required_if=Type move"`
}

// Event is a push frame from the server to one client.
type Event struct {
	Type   string `json:"type" validate:"required"`
	RoomID string `json:"room_id,omitempty"`
	Board  string `json:"board,omitempty"`
	Mark   string `json:"mark,omitempty"`
	Winner string `json:"winner,omitempty"`
}

// Reply answers a client command sent over the websocket.
type Reply struct {
	Type   string `json:"type"`
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
}
