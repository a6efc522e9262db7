package booking

import (
	"context"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/internal/domain/account"
	"github.com/hostelhub/service-booking/internal/domain/hostel"
)

// ListFilter narrows a paginated booking listing.
type ListFilter struct {
	Status  *BookingStatus
	Page    int
	PerPage int
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	OccupancyReader

	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByIDForUser retrieves a booking only if it belongs to userID.
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*Booking, error)

	// FindByUser retrieves a guest's bookings, newest first, with pagination.
	FindByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Booking, int64, error)

	// FindByHostels retrieves bookings of the given hostels, newest first, with pagination.
	FindByHostels(ctx context.Context, hostelIDs []uuid.UUID, filter ListFilter) ([]*Booking, int64, error)

	// AggregateByStatus returns counts and revenue grouped by status. A nil
	// hostelIDs slice means every hostel.
	AggregateByStatus(ctx context.Context, hostelIDs []uuid.UUID) ([]StatusAggregate, error)

	// DeleteByHostel removes every booking of a hostel and returns the count.
	DeleteByHostel(ctx context.Context, hostelID uuid.UUID) (int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}

// Store exposes the repositories bound to one unit of work.
type Store interface {
	Bookings() BookingRepository
	Hostels() hostel.Repository
	Guests() account.Repository
}

// UnitOfWork runs fn in a transaction. fn's error rolls everything back and
// is returned unchanged; storage conflicts surface as TransientConflict.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}
