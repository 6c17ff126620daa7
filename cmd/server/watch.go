package main

import (
	"context"
	"ctchen222/morpion/internal/config"
	"ctchen222/morpion/internal/db"
	"ctchen222/morpion/internal/events"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newWatchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the room events mirrored to redis",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rdb, err := db.NewRedisClient(ctx, cfg.Redis.GetRedisAddr())
			if err != nil {
				return fmt.Errorf("failed to initialize redis: %w", err)
			}
			defer rdb.Close()

			out := cmd.OutOrStdout()
			err = events.Subscribe(ctx, rdb, func(_ context.Context, ev events.Event) {
				fmt.Fprintf(out, "%-20s %s\n", ev.Type, ev.Payload)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
