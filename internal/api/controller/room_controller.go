package controller

import (
	"context"
	"ctchen222/morpion/internal/api/middleware"
	"ctchen222/morpion/internal/api/models"
	"ctchen222/morpion/internal/api/response"
	"ctchen222/morpion/internal/bot"
	"ctchen222/morpion/internal/hub/types"
	"ctchen222/morpion/internal/notify"
	"ctchen222/morpion/internal/room"
	"ctchen222/morpion/internal/stats"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RoomHub is the registry surface the HTTP API drives.
type RoomHub interface {
	CreateRoom(ctx context.Context, playerID string, sink notify.Sink) (string, error)
	JoinRoom(ctx context.Context, roomID, playerID string, sink notify.Sink) error
	QuickMatch(ctx context.Context, playerID string, sink notify.Sink) (string, bool, error)
	AddBot(ctx context.Context, roomID string, difficulty bot.Difficulty) (string, error)
	ListJoinable(now time.Time) []types.JoinableRoom
	Move(ctx context.Context, roomID, playerID string, row, col int) (types.MoveOutcome, error)
	Board(roomID string) (string, error)
	RoomState(roomID, playerID string) (room.PlayerView, error)
	Reset(ctx context.Context, roomID, playerID string) error
	Disconnect(ctx context.Context, roomID, playerID string) error
	Stats(playerID string) stats.Counts
	History(playerID string) []stats.Match
}

// SinkSource returns the live push sink of a player, or nil.
type SinkSource interface {
	Sink(playerID string) notify.Sink
}

// RoomController handles room commands and queries.
type RoomController struct {
	hub   RoomHub
	sinks SinkSource
	now   func() time.Time
}

// NewRoomController creates a new RoomController.
func NewRoomController(hub RoomHub, sinks SinkSource) *RoomController {
	return &RoomController{hub: hub, sinks: sinks, now: time.Now}
}

func (rc *RoomController) sinkFor(playerID string) notify.Sink {
	if rc.sinks == nil {
		return nil
	}
	return rc.sinks.Sink(playerID)
}

// List returns the rooms waiting for an opponent.
func (rc *RoomController) List(c *gin.Context) {
	response.SuccessResponseList(c, rc.hub.ListJoinable(rc.now()))
}

// Create opens a room hosted by the caller.
func (rc *RoomController) Create(c *gin.Context) {
	playerID := middleware.PlayerID(c)
	roomID, err := rc.hub.CreateRoom(c.Request.Context(), playerID, rc.sinkFor(playerID))
	if err != nil {
		response.AppErrorResponse(c, err)
		return
	}
	response.CreatedResponse(c, models.RoomResponse{RoomID: roomID, PlayerID: playerID})
}

// Join seats the caller in the room.
func (rc *RoomController) Join(c *gin.Context) {
	playerID := middleware.PlayerID(c)
	roomID := c.Param("id")
	if err := rc.hub.JoinRoom(c.Request.Context(), roomID, playerID, rc.sinkFor(playerID)); err != nil {
		response.AppErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, models.RoomResponse{RoomID: roomID, PlayerID: playerID})
}

// QuickMatch seats the caller in the oldest waiting room, opening one when
// there is none.
func (rc *RoomController) QuickMatch(c *gin.Context) {
	playerID := middleware.PlayerID(c)
	roomID, created, err := rc.hub.QuickMatch(c.Request.Context(), playerID, rc.sinkFor(playerID))
	if err != nil {
		response.AppErrorResponse(c, err)
		return
	}
	if created {
		response.CreatedResponse(c, models.RoomResponse{RoomID: roomID, PlayerID: playerID})
		return
	}
	response.SuccessResponse(c, models.RoomResponse{RoomID: roomID, PlayerID: playerID})
}

// AddBot seats a practice bot in the caller's waiting room.
func (rc *RoomController) AddBot(c *gin.Context) {
	var req models.BotRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	difficulty, err := bot.ParseDifficulty(req.Difficulty)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	roomID := c.Param("id")
	if _, err := rc.hub.RoomState(roomID, middleware.PlayerID(c)); err != nil {
		response.AppErrorResponse(c, err)
		return
	}
	botID, err := rc.hub.AddBot(c.Request.Context(), roomID, difficulty)
	if err != nil {
		response.AppErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, models.RoomResponse{RoomID: roomID, PlayerID: botID})
}

// Move plays a move in the addressed room, or the caller's current room on
// the routed endpoint.
func (rc *RoomController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	out, err := rc.hub.Move(c.Request.Context(), c.Param("id"), middleware.PlayerID(c), *req.Row, *req.Col)
	if err != nil {
		response.AppErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, out)
}

// Board returns the serialized board as plain text, byte for byte what push
// clients receive.
func (rc *RoomController) Board(c *gin.Context) {
	board, err := rc.hub.Board(c.Param("id"))
	if err != nil {
		response.AppErrorResponse(c, err)
		return
	}
	c.String(http.StatusOK, board)
}

// State answers is-ready, is-over, is-my-turn, symbol, opponent and winner.
func (rc *RoomController) State(c *gin.Context) {
	v, err := rc.hub.RoomState(c.Param("id"), middleware.PlayerID(c))
	if err != nil {
		response.AppErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, models.StateResponse(v))
}

// Reset starts a new game in the room.
func (rc *RoomController) Reset(c *gin.Context) {
	if err := rc.hub.Reset(c.Request.Context(), c.Param("id"), middleware.PlayerID(c)); err != nil {
		response.AppErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, gin.H{"message": "Room reset"})
}

// Leave removes the caller from the room.
func (rc *RoomController) Leave(c *gin.Context) {
	if err := rc.hub.Disconnect(c.Request.Context(), c.Param("id"), middleware.PlayerID(c)); err != nil {
		response.AppErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, gin.H{"message": "Left room"})
}

// Stats returns a player's win/loss/draw counters.
func (rc *RoomController) Stats(c *gin.Context) {
	playerID := c.Param("id")
	response.SuccessResponse(c, models.StatsResponse{PlayerID: playerID, Counts: rc.hub.Stats(playerID)})
}

// History returns the matches a player took part in.
func (rc *RoomController) History(c *gin.Context) {
	response.SuccessResponseList(c, rc.hub.History(c.Param("id")))
}
