package apperror

import (
	"errors"
	"net/http"
)

// Validation rejections. The state that produced them is left unchanged.
var (
	ErrOutOfRange      = errors.New("move is out of range")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrAlreadyOver     = errors.New("game is already over")
	ErrNotReady        = errors.New("game is waiting for an opponent")
	ErrNotAParticipant = errors.New("player is not part of the room")
)

// Routing failures.
var (
	ErrAlreadyOccupied = errors.New("player already holds the host slot")
	ErrRoomFull        = errors.New("room is full")
	ErrNotFound        = errors.New("room not found")
	ErrNotConnected    = errors.New("player is not in any room")
	ErrAlreadyInRoom   = errors.New("player is already in another room")
)

var codes = []struct {
	err    error
	code   string
	status int
}{
	{ErrOutOfRange, "OUT_OF_RANGE", http.StatusUnprocessableEntity},
	{ErrCellOccupied, "CELL_OCCUPIED", http.StatusUnprocessableEntity},
	{ErrNotYourTurn, "NOT_YOUR_TURN", http.StatusUnprocessableEntity},
	{ErrAlreadyOver, "ALREADY_OVER", http.StatusUnprocessableEntity},
	{ErrNotReady, "NOT_READY", http.StatusUnprocessableEntity},
	{ErrNotAParticipant, "NOT_A_PARTICIPANT", http.StatusForbidden},
	{ErrAlreadyOccupied, "ALREADY_OCCUPIED", http.StatusConflict},
	{ErrRoomFull, "ROOM_FULL", http.StatusConflict},
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{ErrNotConnected, "NOT_CONNECTED", http.StatusNotFound},
	{ErrAlreadyInRoom, "ALREADY_IN_ROOM", http.StatusConflict},
}

// Code returns the stable result code for err, "VALID" for nil and
// "INTERNAL" for anything outside the taxonomy.
func Code(err error) string {
	if err == nil {
		return "VALID"
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL"
}

// HTTPStatus maps err to the status code the API answers with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.status
		}
	}
	return http.StatusInternalServerError
}

// IsRejection reports whether err belongs to the typed taxonomy, as opposed to
// an unexpected fault.
func IsRejection(err error) bool {
	return err != nil && Code(err) != "INTERNAL"
}
