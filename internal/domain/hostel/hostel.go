package hostel

import (
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/pkg/domain"
)

// Hostel is the local projection of a listing owned by the catalog service.
// Bookings treat it as read-only input.
type Hostel struct {
	ID         uuid.UUID
	LandlordID uuid.UUID
	Name       string
	Location   string
	Capacity   int
	PriceCents int64
	Currency   string
	UpdatedAt  time.Time
}

// Validate checks the invariants a projection row must hold.
func (h *Hostel) Validate() error {
	if h.ID == uuid.Nil {
		return domain.NewValidationError("hostel ID is required")
	}
	if h.LandlordID == uuid.Nil {
		return domain.NewValidationError("landlord ID is required")
	}
	if h.Capacity < 0 {
		return domain.NewValidationError("capacity cannot be negative")
	}
	if h.PriceCents < 0 {
		return domain.NewValidationError("price cannot be negative")
	}
	return nil
}

// OwnedBy reports whether landlordID owns the hostel.
func (h *Hostel) OwnedBy(landlordID uuid.UUID) bool {
	return h.LandlordID == landlordID
}

// CurrencyOrDefault returns the listing currency, KES when unset.
func (h *Hostel) CurrencyOrDefault() string {
	if h.Currency == "" {
		return domain.CurrencyKES
	}
	return h.Currency
}
