package booking

import (
	"testing"
	"time"

	"github.com/hostelhub/service-booking/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange_Rejects(t *testing.T) {
	_, err := ParseDateRange("2024-01-10", "2024-01-10")
	assert.True(t, domain.IsKind(err, domain.KindInvalidRange), "empty range")

	_, err = ParseDateRange("2024-01-10", "2024-01-01")
	assert.True(t, domain.IsKind(err, domain.KindInvalidRange), "reversed range")

	_, err = ParseDateRange("10/01/2024", "2024-01-20")
	assert.True(t, domain.IsKind(err, domain.KindInvalidRange), "bad format")
}

func TestDateRange_Overlaps(t *testing.T) {
	a := mustRange(t, "2024-01-01", "2024-01-10")

	tests := []struct {
		name string
		b    DateRange
		want bool
	}{
		{"back to back after", mustRange(t, "2024-01-10", "2024-01-20"), false},
		{"back to back before", mustRange(t, "2023-12-20", "2024-01-01"), false},
		{"partial", mustRange(t, "2024-01-05", "2024-01-15"), true},
		{"inside", mustRange(t, "2024-01-03", "2024-01-04"), true},
		{"enclosing", mustRange(t, "2023-12-01", "2024-02-01"), true},
		{"last night", mustRange(t, "2024-01-09", "2024-01-11"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(a), "overlap is symmetric")
		})
	}
}

func TestDateRange_ContainsAndNights(t *testing.T) {
	r := mustRange(t, "2024-01-01", "2024-02-15")

	assert.Equal(t, 45, r.Nights())
	assert.True(t, r.Contains(mustDay(t, "2024-01-01")))
	assert.True(t, r.Contains(mustDay(t, "2024-02-14").Add(23*time.Hour)))
	assert.False(t, r.Contains(mustDay(t, "2024-02-15")))
}

func TestNewDateRange_NormalizesToDays(t *testing.T) {
	in := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	out := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)

	r, err := NewDateRange(in, out)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Nights())
	assert.Equal(t, "2024-03-01/2024-03-02", r.String())
}
