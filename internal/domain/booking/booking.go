package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/pkg/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	userID        uuid.UUID
	hostelID      uuid.UUID
	stay          DateRange
	guests        int

	totalPriceCents int64
	currency        string

	status    BookingStatus
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "HB-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "HB-" + string(result), nil
}

// NewBooking creates a confirmed Booking. Admission against capacity is the
// caller's job; this only checks the booking's own fields.
func NewBooking(
	userID uuid.UUID,
	hostelID uuid.UUID,
	stay DateRange,
	guests int,
	totalPriceCents int64,
	currency string,
	now time.Time,
) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if hostelID == uuid.Nil {
		return nil, domain.NewValidationError("hostel ID is required")
	}
	if !stay.CheckIn.Before(stay.CheckOut) {
		return nil, domain.NewInvalidRangeError("check-out date must be after check-in date")
	}
	if guests < 1 {
		return nil, domain.NewValidationError("guests must be at least 1")
	}
	if totalPriceCents < 0 {
		return nil, domain.NewValidationError("total price cannot be negative")
	}
	if currency == "" {
		currency = domain.CurrencyKES
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Booking{
		id:              uuid.New(),
		bookingNumber:   bookingNumber,
		userID:          userID,
		hostelID:        hostelID,
		stay:            stay,
		guests:          guests,
		totalPriceCents: totalPriceCents,
		currency:        currency,
		status:          StatusConfirmed,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	userID uuid.UUID,
	hostelID uuid.UUID,
	stay DateRange,
	guests int,
	totalPriceCents int64,
	currency string,
	status BookingStatus,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		bookingNumber:   bookingNumber,
		userID:          userID,
		hostelID:        hostelID,
		stay:            stay,
		guests:          guests,
		totalPriceCents: totalPriceCents,
		currency:        currency,
		status:          status,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// UserID returns the guest's user ID.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// HostelID returns the booked hostel.
func (b *Booking) HostelID() uuid.UUID { return b.hostelID }

// Stay returns the booked date range.
func (b *Booking) Stay() DateRange { return b.stay }

// Guests returns the number of guests.
func (b *Booking) Guests() int { return b.guests }

// TotalPriceCents returns the total price in minor units.
func (b *Booking) TotalPriceCents() int64 { return b.totalPriceCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// IsActive reports whether the booking currently holds capacity.
func (b *Booking) IsActive() bool { return b.status.IsActive() }

// --- Behavior ---

// Cancel cancels the booking on behalf of the guest. Cancellation closes at
// the start of the check-in day.
func (b *Booking) Cancel(now time.Time) error {
	if !b.status.IsActive() {
		return domain.NewInvalidStateMessage(
			fmt.Sprintf("booking cannot be cancelled from status %s", b.status))
	}
	if !b.stay.CheckIn.After(Day(now)) {
		return domain.NewInvalidStateMessage("cannot cancel on or after the check-in date")
	}
	b.status = StatusCancelled
	b.updatedAt = now.UTC()
	return nil
}

// TransitionTo moves the booking to target if the state machine allows it.
func (b *Booking) TransitionTo(target BookingStatus, now time.Time) error {
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
	b.status = target
	b.updatedAt = now.UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}

// RenewBookingNumber draws a new booking number for a booking not yet stored.
func (b *Booking) RenewBookingNumber() error {
	number, err := generateBookingNumber()
	if err != nil {
		return err
	}
	b.bookingNumber = number
	return nil
}
