package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OccupancyReader is the read side the Ledger scans. Implementations bound to
// a transaction see that transaction's snapshot.
type OccupancyReader interface {
	// FindActiveOverlapping returns active bookings of the hostel whose stay
	// overlaps window.
	FindActiveOverlapping(ctx context.Context, hostelID uuid.UUID, window DateRange) ([]*Booking, error)

	// FindActiveEndingOnOrAfter returns active bookings of the hostel whose
	// check-out is on or after day.
	FindActiveEndingOnOrAfter(ctx context.Context, hostelID uuid.UUID, day time.Time) ([]*Booking, error)
}

// Ledger answers how many guests are already committed to a hostel. It always
// recomputes from stored bookings; there is no running counter.
type Ledger struct {
	reader OccupancyReader
}

// NewLedger creates a Ledger over reader.
func NewLedger(reader OccupancyReader) *Ledger {
	return &Ledger{reader: reader}
}

// OccupiedGuests sums guests of active bookings overlapping window.
func (l *Ledger) OccupiedGuests(ctx context.Context, hostelID uuid.UUID, window DateRange) (int, error) {
	bookings, err := l.reader.FindActiveOverlapping(ctx, hostelID, window)
	if err != nil {
		return 0, fmt.Errorf("failed to scan occupancy: %w", err)
	}
	total := 0
	for _, b := range bookings {
		// The reader's predicate is re-applied so a loose query can never over-admit.
		if b.HostelID() == hostelID && b.IsActive() && b.Stay().Overlaps(window) {
			total += b.Guests()
		}
	}
	return total, nil
}

// CommittedGuestsFrom sums guests of active bookings still running on or after day.
func (l *Ledger) CommittedGuestsFrom(ctx context.Context, hostelID uuid.UUID, day time.Time) (int, error) {
	day = Day(day)
	bookings, err := l.reader.FindActiveEndingOnOrAfter(ctx, hostelID, day)
	if err != nil {
		return 0, fmt.Errorf("failed to scan committed guests: %w", err)
	}
	total := 0
	for _, b := range bookings {
		if b.HostelID() == hostelID && b.IsActive() && !b.Stay().CheckOut.Before(day) {
			total += b.Guests()
		}
	}
	return total, nil
}
