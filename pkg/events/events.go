// Package events holds the topic names, event types and payloads exchanged
// with other marketplace services.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicHostelEvents  = "hostel.events"
	TopicUserEvents    = "user.events"
)

// Booking event types, produced by this service.
const (
	BookingCreated       = "booking.created"
	BookingCancelled     = "booking.cancelled"
	BookingStatusChanged = "booking.status_changed"
)

// Catalog event types, consumed by this service.
const (
	HostelUpserted = "hostel.upserted"
	HostelDeleted  = "hostel.deleted"
	UserUpserted   = "user.upserted"
)

// BookingCreatedEvent is published after a booking is committed.
type BookingCreatedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	BookingNumber   string    `json:"booking_number"`
	UserID          uuid.UUID `json:"user_id"`
	HostelID        uuid.UUID `json:"hostel_id"`
	LandlordID      uuid.UUID `json:"landlord_id"`
	CheckIn         string    `json:"check_in"`
	CheckOut        string    `json:"check_out"`
	Guests          int       `json:"guests"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a guest cancels.
type BookingCancelledEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	UserID        uuid.UUID `json:"user_id"`
	HostelID      uuid.UUID `json:"hostel_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published when a landlord changes a status.
type BookingStatusChangedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	HostelID      uuid.UUID `json:"hostel_id"`
	ChangedBy     uuid.UUID `json:"changed_by"`
	OldStatus     string    `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// HostelUpsertedEvent carries the listing fields the booking engine needs.
type HostelUpsertedEvent struct {
	HostelID   uuid.UUID `json:"hostel_id"`
	LandlordID uuid.UUID `json:"landlord_id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	Capacity   int       `json:"capacity"`
	PriceCents int64     `json:"price_cents"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// HostelDeletedEvent removes a listing and, with it, its bookings.
type HostelDeletedEvent struct {
	HostelID   uuid.UUID `json:"hostel_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserUpsertedEvent carries the account fields used in booking snapshots.
type UserUpsertedEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}
