package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}

func TestNewRedisClient_Container(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, endpoint)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(ctx, "morpion:ping", "pong", time.Minute).Err())
	got, err := client.Get(ctx, "morpion:ping").Result()
	require.NoError(t, err)
	assert.Equal(t, "pong", got)
}
