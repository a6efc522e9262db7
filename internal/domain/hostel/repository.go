package hostel

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for the hostel projection.
type Repository interface {
	// FindByID retrieves a hostel, failing with NotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*Hostel, error)

	// LockByID retrieves a hostel and holds a row lock on it until the
	// surrounding transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*Hostel, error)

	// FindByIDs retrieves the given hostels keyed by ID; unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Hostel, error)

	// ListByLandlord retrieves every hostel owned by a landlord.
	ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]*Hostel, error)

	// ListAll retrieves every hostel (admin reporting).
	ListAll(ctx context.Context) ([]*Hostel, error)

	// Upsert inserts or replaces a projection row.
	Upsert(ctx context.Context, h *Hostel) error

	// Delete removes a projection row.
	Delete(ctx context.Context, id uuid.UUID) error
}
