package hub

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	created metric.Int64Counter
	closed  metric.Int64Counter
	active  metric.Int64UpDownCounter
}

func newMetrics(provider metric.MeterProvider) *metrics {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter("hub")
	m := &metrics{}
	var err error
	if m.created, err = meter.Int64Counter("morpion.rooms.created",
		metric.WithDescription("Rooms opened since start"),
		metric.WithUnit("{room}"),
	); err != nil {
		slog.Warn("Failed to create rooms.created counter", "error", err)
	}
	if m.closed, err = meter.Int64Counter("morpion.rooms.closed",
		metric.WithDescription("Rooms removed from the registry, by reason"),
		metric.WithUnit("{room}"),
	); err != nil {
		slog.Warn("Failed to create rooms.closed counter", "error", err)
	}
	if m.active, err = meter.Int64UpDownCounter("morpion.rooms.active",
		metric.WithDescription("Rooms currently registered"),
		metric.WithUnit("{room}"),
	); err != nil {
		slog.Warn("Failed to create rooms.active counter", "error", err)
	}
	return m
}

func (m *metrics) roomCreated(ctx context.Context) {
	if m.created != nil {
		m.created.Add(ctx, 1)
	}
	if m.active != nil {
		m.active.Add(ctx, 1)
	}
}

func (m *metrics) roomClosed(ctx context.Context, reason string) {
	if m.closed != nil {
		m.closed.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
	if m.active != nil {
		m.active.Add(ctx, -1)
	}
}
