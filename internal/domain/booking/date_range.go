package booking

import (
	"fmt"
	"time"

	"github.com/hostelhub/service-booking/pkg/domain"
)

// DateLayout is the wire format of stay dates.
const DateLayout = "2006-01-02"

// DateRange is a half-open interval of calendar days [CheckIn, CheckOut).
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Day truncates t to its calendar day at UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.NewInvalidRangeError(fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", s))
	}
	return t, nil
}

// NewDateRange builds a range from two days. check-in must precede check-out.
func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	r := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if !r.CheckIn.Before(r.CheckOut) {
		return DateRange{}, domain.NewInvalidRangeError("check-out date must be after check-in date")
	}
	return r, nil
}

// ParseDateRange parses both dates and builds the range.
func ParseDateRange(checkIn, checkOut string) (DateRange, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(in, out)
}

// SingleDay is the one-night window starting at day.
func SingleDay(day time.Time) DateRange {
	d := Day(day)
	return DateRange{CheckIn: d, CheckOut: d.AddDate(0, 0, 1)}
}

// Overlaps reports whether two half-open ranges share at least one day.
// A stay ending on D and another starting on D do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// Contains reports whether day falls inside the range.
func (r DateRange) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}

// Nights returns the number of days between check-in and check-out.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// StartsBefore reports whether check-in is strictly earlier than day.
func (r DateRange) StartsBefore(day time.Time) bool {
	return r.CheckIn.Before(Day(day))
}

func (r DateRange) String() string {
	return r.CheckIn.Format(DateLayout) + "/" + r.CheckOut.Format(DateLayout)
}
