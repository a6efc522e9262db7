package application

import (
	"context"
	"time"

	"github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/pkg/kafka"
)

// EventPublisher publishes integration events. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// StatsCache stores computed stats. A nil StatsCache disables caching.
type StatsCache interface {
	Get(ctx context.Context, key string) (*booking.Stats, error)
	Set(ctx context.Context, key string, stats *booking.Stats) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Clock returns the current time. Tests pin it to a fixed date.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

const eventSource = "service-booking"
