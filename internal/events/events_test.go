package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestEncode(t *testing.T) {
	data, err := Encode(TypeGameOver, GameOverPayload{RoomID: "AB12CD34", Winner: "alice", Board: "X|X|X\n | | \nO|O| "})
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, TypeGameOver, ev.Type)

	var payload GameOverPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "alice", payload.Winner)
	assert.Equal(t, "X|X|X\n | | \nO|O| ", payload.Board)

	_, err = Encode(TypeRoomClosed, make(chan int))
	assert.Error(t, err)
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
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

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestRedisPublisher_RoundTrip(t *testing.T) {
	rdb := setupRedis(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan Event, 4)
	subscribed := make(chan struct{})
	go func() {
		_ = Subscribe(ctx, rdb, func(_ context.Context, ev Event) {
			received <- ev
		})
	}()

	// Publish until the subscriber is attached; pub/sub drops messages
	// sent before SUBSCRIBE is processed.
	pub := NewRedisPublisher(rdb)
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-subscribed:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = pub.Publish(ctx, TypeRoomCreated, RoomCreatedPayload{RoomID: "AB12CD34", HostID: "alice"})
			}
		}
	}()

	select {
	case ev := <-received:
		close(subscribed)
		assert.Equal(t, TypeRoomCreated, ev.Type)
		var payload RoomCreatedPayload
		require.NoError(t, json.Unmarshal(ev.Payload, &payload))
		assert.Equal(t, RoomCreatedPayload{RoomID: "AB12CD34", HostID: "alice"}, payload)
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), TypeRoomClosed, RoomClosedPayload{RoomID: "X"}))
}
