package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channels published by the alert pipeline.
const (
	ChannelAlerts = "alerts"
	ChannelOTP    = "otp"
)

// AlertEvent is published after every emergency fan-out so downstream
// consumers (dashboards, follow-up jobs) can react without polling.
type AlertEvent struct {
	BloodGroup string  `json:"blood_group"`
	City       string  `json:"city"`
	Total      int     `json:"total"`
	Sent       int     `json:"sent"`
	Failed     int     `json:"failed"`
	DurationMS float64 `json:"duration_ms"`
}
