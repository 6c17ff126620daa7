package server

import (
	"context"
	"ctchen222/morpion/internal/api/controller"
	"ctchen222/morpion/internal/api/middleware"
	"ctchen222/morpion/internal/api/service"
	"ctchen222/morpion/internal/apperror"
	"ctchen222/morpion/internal/hub"
	"ctchen222/morpion/internal/player"
	"ctchen222/morpion/pkg/proto"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	hub      *hub.Hub
	users    service.UserService
	conns    *Connections
	upgrader websocket.Upgrader
	engine   *gin.Engine
}

func NewServer(h *hub.Hub, users service.UserService) *Server {
	s := &Server{
		hub:   h,
		users: users,
		conns: NewConnections(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine = s.routes()
	return s
}

// Engine returns the HTTP handler.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Connections returns the registry of live websockets.
func (s *Server) Connections() *Connections {
	return s.conns
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	userController := controller.NewUserController(s.users)
	roomController := controller.NewRoomController(s.hub, s.conns)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": s.hub.Len(), "connections": s.conns.Len()})
	})

	api := r.Group("/api")
	api.POST("/guest", userController.GuestLogin)

	// Stats and history are public.
	api.GET("/players/:id/stats", roomController.Stats)
	api.GET("/players/:id/history", roomController.History)
	api.GET("/rooms", roomController.List)
	api.GET("/rooms/:id/board", roomController.Board)

	authed := api.Group("", middleware.AuthRequired(s.users))
	authed.POST("/rooms", roomController.Create)
	authed.POST("/rooms/quick", roomController.QuickMatch)
	authed.POST("/rooms/:id/join", roomController.Join)
	authed.POST("/rooms/:id/bot", roomController.AddBot)
	authed.POST("/rooms/:id/moves", roomController.Move)
	authed.GET("/rooms/:id/state", roomController.State)
	authed.POST("/rooms/:id/reset", roomController.Reset)
	authed.POST("/rooms/:id/leave", roomController.Leave)
	authed.POST("/moves", roomController.Move)
	authed.POST("/reset", roomController.Reset)
	authed.POST("/leave", roomController.Leave)

	r.GET("/ws", middleware.AuthRequired(s.users), s.handleWebSocket)
	return r
}

// handleWebSocket upgrades the connection and makes it the caller's push
// sink. Commands sent over the socket are routed through the caller's room.
// Closing the socket leaves the room.
func (s *Server) handleWebSocket(c *gin.Context) {
	playerID := middleware.PlayerID(c)
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("player.id", playerID),
	))
	defer span.End()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "player.id", playerID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	p := player.NewPlayer(playerID, conn)
	if prev := s.conns.Add(p); prev != nil {
		slog.InfoContext(ctx, "Replacing previous connection", "player.id", playerID)
		_ = prev.Conn.Close()
	}
	if err := s.hub.AttachSink(ctx, playerID, p); err != nil && !errors.Is(err, apperror.ErrNotConnected) {
		slog.WarnContext(ctx, "Could not attach sink", "player.id", playerID, "error", err)
	}

	if err := p.ReadPump(ctx, s.handleCommand); err != nil {
		span.RecordError(err)
	}

	if s.conns.Remove(p) {
		if err := s.hub.Disconnect(ctx, "", playerID); err != nil && !errors.Is(err, apperror.ErrNotConnected) {
			slog.WarnContext(ctx, "Cleanup after disconnect failed", "player.id", playerID, "error", err)
		}
	}
	_ = conn.Close()
}

// handleCommand runs one websocket command against the caller's room.
func (s *Server) handleCommand(ctx context.Context, playerID string, msg proto.ClientToServerMessage) error {
	switch msg.Type {
	case proto.CommandMove:
		_, err := s.hub.Move(ctx, "", playerID, msg.Position[0], msg.Position[1])
		return err
	case proto.CommandReset:
		return s.hub.Reset(ctx, "", playerID)
	case proto.CommandLeave:
		return s.hub.Disconnect(ctx, "", playerID)
	default:
		return fmt.Errorf("unknown command %q", msg.Type)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		slog.DebugContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"player.id", middleware.PlayerID(c),
		)
	}
}
