package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/internal/domain/hostel"
	"github.com/hostelhub/service-booking/pkg/domain"
)

// HostelReader supplies hostel capacity.
type HostelReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*hostel.Hostel, error)
}

// Decision is the outcome of an admission check.
type Decision struct {
	Capacity  int
	Occupied  int
	Requested int
	Admitted  bool
}

// Remaining returns the guest slots left in the window, never negative.
func (d Decision) Remaining() int {
	if left := d.Capacity - d.Occupied; left > 0 {
		return left
	}
	return 0
}

// AvailabilityChecker decides whether a hostel can take a group of guests.
// Capacity is soft: only the aggregate guest count of overlapping active
// bookings is compared against it.
type AvailabilityChecker struct {
	hostels HostelReader
	ledger  *Ledger
}

// NewAvailabilityChecker creates a new AvailabilityChecker.
func NewAvailabilityChecker(hostels HostelReader, ledger *Ledger) *AvailabilityChecker {
	return &AvailabilityChecker{hostels: hostels, ledger: ledger}
}

// IsAvailable reports whether guests more people fit into the hostel during window.
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, hostelID uuid.UUID, window DateRange, guests int) (bool, error) {
	h, err := c.hostels.FindByID(ctx, hostelID)
	if err != nil {
		return false, err
	}
	d, err := c.Evaluate(ctx, h, window, guests)
	if err != nil {
		return false, err
	}
	return d.Admitted, nil
}

// Remaining returns the free guest slots of the hostel during window.
func (c *AvailabilityChecker) Remaining(ctx context.Context, hostelID uuid.UUID, window DateRange) (int, error) {
	h, err := c.hostels.FindByID(ctx, hostelID)
	if err != nil {
		return 0, err
	}
	d, err := c.Evaluate(ctx, h, window, 0)
	if err != nil {
		return 0, err
	}
	return d.Remaining(), nil
}

// Evaluate runs the admission rule against an already loaded hostel. The
// creation path calls it with the row-locked hostel.
func (c *AvailabilityChecker) Evaluate(ctx context.Context, h *hostel.Hostel, window DateRange, guests int) (Decision, error) {
	if !window.CheckIn.Before(window.CheckOut) {
		return Decision{}, domain.NewInvalidRangeError("check-out date must be after check-in date")
	}
	if guests < 0 {
		return Decision{}, domain.NewValidationError(fmt.Sprintf("invalid guest count: %d", guests))
	}
	occupied, err := c.ledger.OccupiedGuests(ctx, h.ID, window)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Capacity:  h.Capacity,
		Occupied:  occupied,
		Requested: guests,
		Admitted:  occupied+guests <= h.Capacity,
	}, nil
}
