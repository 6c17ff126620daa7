package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitOtel_Disabled(t *testing.T) {
	shutdown, err := InitOtel(context.Background(), Config{Enabled: false, Endpoint: "unused:4317"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestWrapShutdown(t *testing.T) {
	boom := errors.New("boom")

	err := wrapShutdown("TracerProvider", func(context.Context) error { return boom })(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "TracerProvider")

	assert.NoError(t, wrapShutdown("MeterProvider", func(context.Context) error { return nil })(context.Background()))
}
