package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for the guest projection.
type Repository interface {
	// FindByID retrieves a guest, failing with NotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*Guest, error)

	// FindByIDs retrieves the given guests keyed by ID; unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Guest, error)

	// Upsert inserts or replaces a projection row.
	Upsert(ctx context.Context, g *Guest) error
}
