package booking

import (
	"fmt"

	"github.com/hostelhub/service-booking/pkg/domain"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	// StatusUpcoming is the legacy initial label. It occupies capacity exactly like confirmed.
	StatusUpcoming  BookingStatus = "upcoming"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
	StatusNoShow    BookingStatus = "no_show"
)

// validTransitions defines the state machine for booking status transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusConfirmed: {StatusCancelled, StatusCompleted, StatusNoShow},
	StatusUpcoming:  {StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow},
	StatusCancelled: {},
	StatusCompleted: {},
	StatusNoShow:    {},
}

// settableStatuses are the targets a landlord may request through a status update.
var settableStatuses = map[BookingStatus]bool{
	StatusConfirmed: true,
	StatusCancelled: true,
	StatusCompleted: true,
	StatusNoShow:    true,
}

// ActiveStatuses are the statuses that count toward hostel capacity.
var ActiveStatuses = []BookingStatus{StatusConfirmed, StatusUpcoming}

// RevenueStatuses are the statuses whose price counts as earned revenue.
var RevenueStatuses = []BookingStatus{StatusConfirmed, StatusCompleted}

// AllStatuses lists every known status in display order.
var AllStatuses = []BookingStatus{StatusConfirmed, StatusUpcoming, StatusCancelled, StatusCompleted, StatusNoShow}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// IsActive reports whether a booking in this status holds capacity.
func (s BookingStatus) IsActive() bool {
	return s == StatusConfirmed || s == StatusUpcoming
}

// EarnsRevenue reports whether a booking in this status contributes to revenue.
func (s BookingStatus) EarnsRevenue() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", domain.NewInvalidStatusError(fmt.Sprintf("invalid booking status: %s", s))
	}
	return status, nil
}

// ParseTargetStatus validates a status requested by a landlord. upcoming is
// readable but never a valid target.
func ParseTargetStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !settableStatuses[status] {
		return "", domain.NewInvalidStatusError(
			fmt.Sprintf("invalid status %q: must be one of confirmed, cancelled, completed, no_show", s))
	}
	return status, nil
}
