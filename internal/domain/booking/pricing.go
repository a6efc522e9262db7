package booking

import (
	"fmt"
	"math"
)

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the total price in minor units for the given parameters.
	Calculate(params PricingParams) (int64, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	MonthlyRateCents int64
	Nights           int
	Guests           int
}

// MonthlyPricingStrategy charges the hostel's monthly rate per guest for
// every started month of the stay.
type MonthlyPricingStrategy struct{}

// NewMonthlyPricingStrategy creates a new MonthlyPricingStrategy.
func NewMonthlyPricingStrategy() *MonthlyPricingStrategy {
	return &MonthlyPricingStrategy{}
}

// Calculate computes the total price.
//
// Pricing formula:
//   - months = max(1, round(nights / 30)), halves round to even (45 nights is 2, 75 is 2)
//   - total = monthly rate * months * guests
func (s *MonthlyPricingStrategy) Calculate(params PricingParams) (int64, error) {
	if params.MonthlyRateCents < 0 {
		return 0, fmt.Errorf("monthly rate cannot be negative")
	}
	if params.Nights < 1 {
		return 0, fmt.Errorf("stay must be at least one night")
	}
	if params.Guests < 1 {
		return 0, fmt.Errorf("guests must be at least 1")
	}
	return params.MonthlyRateCents * BillableMonths(params.Nights) * int64(params.Guests), nil
}

// BillableMonths converts a stay length into charged months.
func BillableMonths(nights int) int64 {
	months := int64(math.RoundToEven(float64(nights) / 30))
	if months < 1 {
		return 1
	}
	return months
}
