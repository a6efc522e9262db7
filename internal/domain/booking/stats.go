package booking

import "math"

// StatusAggregate is one GROUP BY status row of a booking set.
type StatusAggregate struct {
	Status       BookingStatus
	Count        int64
	RevenueCents int64
}

// Stats is the reporting rollup of a hostel's or landlord's bookings.
type Stats struct {
	TotalBookings     int64            `json:"total_bookings"`
	Confirmed         int64            `json:"confirmed_bookings"`
	Upcoming          int64            `json:"upcoming_bookings"`
	Cancelled         int64            `json:"cancelled_bookings"`
	Completed         int64            `json:"completed_bookings"`
	NoShow            int64            `json:"no_show_bookings"`
	ByStatus          map[string]int64 `json:"by_status"`
	TotalRevenueCents int64            `json:"total_revenue_cents"`
	ActiveGuestsToday int              `json:"active_guests_today"`
	TotalCapacity     int              `json:"total_capacity"`
	OccupancyRate     float64          `json:"occupancy_rate"`
}

// BuildStats rolls status aggregates up. Revenue counts confirmed and
// completed bookings only.
func BuildStats(rows []StatusAggregate) Stats {
	s := Stats{ByStatus: make(map[string]int64, len(AllStatuses))}
	for _, st := range AllStatuses {
		s.ByStatus[string(st)] = 0
	}
	for _, row := range rows {
		s.TotalBookings += row.Count
		s.ByStatus[string(row.Status)] += row.Count
		switch row.Status {
		case StatusConfirmed:
			s.Confirmed += row.Count
		case StatusUpcoming:
			s.Upcoming += row.Count
		case StatusCancelled:
			s.Cancelled += row.Count
		case StatusCompleted:
			s.Completed += row.Count
		case StatusNoShow:
			s.NoShow += row.Count
		}
		if row.Status.EarnsRevenue() {
			s.TotalRevenueCents += row.RevenueCents
		}
	}
	return s
}

// WithOccupancy sets today's occupancy. The rate is a percentage of capacity
// capped at 100 and rounded to one decimal; zero capacity yields 0.
func (s Stats) WithOccupancy(activeGuests, capacity int) Stats {
	s.ActiveGuestsToday = activeGuests
	s.TotalCapacity = capacity
	s.OccupancyRate = 0
	if capacity > 0 {
		rate := math.Min(100, float64(activeGuests)/float64(capacity)*100)
		s.OccupancyRate = math.Round(rate*10) / 10
	}
	return s
}
