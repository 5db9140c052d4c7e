package main

import (
	"context"
	"time"

	"github.com/mohammed-shakir/oceanwatch/internal/monitor"
	"github.com/mohammed-shakir/oceanwatch/pkg/alerts/kafka"
)

var timeNow = time.Now

// alertPublisher adapts the kafka publisher to the monitor's alert hook.
type alertPublisher struct {
	pub *kafka.Publisher
}

func (a alertPublisher) Publish(ctx context.Context, al monitor.Alert, d monitor.Detection) error {
	return a.pub.Publish(ctx, toEvent(al, d))
}

func toEvent(al monitor.Alert, d monitor.Detection) kafka.AlertEvent {
	ts := d.Timestamp
	if ts.IsZero() {
		ts = timeNow()
	}
	return kafka.AlertEvent{
		Message:     al.Message,
		Details:     al.Details,
		Level:       string(d.Level),
		DetectionID: d.ID,
		Lat:         d.Location.Lat,
		Lng:         d.Location.Lng,
		TS:          ts.UTC(),
	}
}
