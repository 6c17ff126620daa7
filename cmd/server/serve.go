package main

import (
	"context"
	"ctchen222/morpion/internal/api/service"
	"ctchen222/morpion/internal/config"
	"ctchen222/morpion/internal/db"
	"ctchen222/morpion/internal/events"
	"ctchen222/morpion/internal/hub"
	"ctchen222/morpion/internal/logger"
	"ctchen222/morpion/internal/server"
	"ctchen222/morpion/internal/stats"
	"ctchen222/morpion/internal/telemetry"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the room server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	if err := logger.Init(cfg.LogLevel, cfg.Telemetry.Enabled); err != nil {
		return err
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Event mirror
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Redis.Enabled {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb)
		slog.Info("Mirroring room events to redis", "addr", cfg.Redis.GetRedisAddr(), "channel", events.EventsChannel)
	}

	// Create hub
	h := hub.NewHub(stats.NewTracker(), publisher, hub.Options{
		InactivityTimeout: cfg.Game.InactivityTimeout,
		ReapInterval:      cfg.Game.ReapInterval,
		BotThinkTime:      cfg.Game.BotThinkTime,
		Room:              cfg.Game.RoomOptions(),
	})
	hubCtx, cancelHub := context.WithCancel(ctx)
	defer cancelHub()
	go h.Run(hubCtx)

	// Create the Gin-based server
	srv := server.NewServer(h, service.NewUserService(cfg.JWTSecret))
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cancelHub()
	h.Shutdown(shutdownCtx)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exiting")
	return nil
}
