package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/internal/domain/account"
	"github.com/hostelhub/service-booking/internal/domain/hostel"
	"github.com/hostelhub/service-booking/pkg/domain"
	"github.com/hostelhub/service-booking/pkg/events"
	"github.com/hostelhub/service-booking/pkg/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// CatalogProjector applies listing and account changes to the local projections.
type CatalogProjector interface {
	UpsertHostel(ctx context.Context, h *hostel.Hostel) error
	DeleteHostel(ctx context.Context, hostelID uuid.UUID) error
	UpsertGuest(ctx context.Context, g *account.Guest) error
}

// CatalogEventConsumer listens to hostel and user events and keeps the
// projections the booking engine reads from up to date.
type CatalogEventConsumer struct {
	consumer  *kafka.Consumer
	projector CatalogProjector
	logger    *zap.Logger
}

// NewCatalogEventConsumer creates a new CatalogEventConsumer.
func NewCatalogEventConsumer(
	brokers []string,
	groupID string,
	projector CatalogProjector,
	logger *zap.Logger,
) *CatalogEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID,
		[]string{events.TopicHostelEvents, events.TopicUserEvents}, logger)
	return &CatalogEventConsumer{
		consumer:  consumer,
		projector: projector,
		logger:    logger,
	}
}

// Start begins consuming catalog events. This blocks until the context is cancelled.
func (c *CatalogEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CatalogEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CatalogEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from catalog topic",
			zap.String("topic", msg.Topic),
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.HostelUpserted:
		return c.handleHostelUpserted(ctx, cloudEvent)
	case events.HostelDeleted:
		return c.handleHostelDeleted(ctx, cloudEvent)
	case events.UserUpserted:
		return c.handleUserUpserted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled catalog event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *CatalogEventConsumer) handleHostelUpserted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.HostelUpsertedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse HostelUpsertedEvent data", zap.Error(err))
		return nil
	}

	h := &hostel.Hostel{
		ID:         evt.HostelID,
		LandlordID: evt.LandlordID,
		Name:       evt.Name,
		Location:   evt.Location,
		Capacity:   evt.Capacity,
		PriceCents: evt.PriceCents,
		Currency:   evt.Currency,
		UpdatedAt:  occurredAt(evt.OccurredAt, cloudEvent),
	}
	return c.apply(c.projector.UpsertHostel(ctx, h), "hostel", evt.HostelID)
}

func (c *CatalogEventConsumer) handleHostelDeleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.HostelDeletedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse HostelDeletedEvent data", zap.Error(err))
		return nil
	}

	c.logger.Info("processing hostel deleted event",
		zap.String("hostel_id", evt.HostelID.String()),
	)
	return c.apply(c.projector.DeleteHostel(ctx, evt.HostelID), "hostel", evt.HostelID)
}

func (c *CatalogEventConsumer) handleUserUpserted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.UserUpsertedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse UserUpsertedEvent data", zap.Error(err))
		return nil
	}

	role := account.Role(evt.Role)
	if !role.IsValid() {
		c.logger.Warn("skipping user event with unknown role",
			zap.String("user_id", evt.UserID.String()),
			zap.String("role", evt.Role),
		)
		return nil
	}

	g := &account.Guest{
		ID:        evt.UserID,
		Name:      evt.Name,
		Email:     evt.Email,
		Role:      role,
		UpdatedAt: occurredAt(evt.OccurredAt, cloudEvent),
	}
	return c.apply(c.projector.UpsertGuest(ctx, g), "user", evt.UserID)
}

// apply swallows validation failures so a bad payload cannot block the
// partition; anything else is returned and the message is redelivered.
func (c *CatalogEventConsumer) apply(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.KindValidation) {
		c.logger.Warn("skipping invalid catalog event",
			zap.String("entity", entity),
			zap.String("id", id.String()),
			zap.Error(err),
		)
		return nil
	}
	c.logger.Error("failed to apply catalog event",
		zap.String("entity", entity),
		zap.String("id", id.String()),
		zap.Error(err),
	)
	return err
}

func occurredAt(t time.Time, cloudEvent kafka.CloudEvent) time.Time {
	if t.IsZero() {
		return cloudEvent.Time
	}
	return t
}
