package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	bookingDomain "github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/pkg/auth"
	"github.com/hostelhub/service-booking/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHostelStats(t *testing.T) {
	env := setupRouter(t)
	landlordID, hostelID := uuid.New(), uuid.New()
	stats := bookingDomain.BuildStats([]bookingDomain.StatusAggregate{
		{Status: bookingDomain.StatusConfirmed, Count: 2, RevenueCents: 6000},
	}).WithOccupancy(3, 4)

	env.stats.On("GetBookingStats", mock.Anything, hostelID, landlordID).Return(&stats, nil).Once()

	w := env.do(t, http.MethodGet, "/api/v1/landlord/hostels/"+hostelID.String()+"/stats", landlordID, auth.RoleLandlord, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.EqualValues(t, 2, got["confirmed_bookings"])
	assert.EqualValues(t, 6000, got["total_revenue_cents"])
	assert.EqualValues(t, 75, got["occupancy_rate"])
}

func TestHostelStats_ForeignLandlord(t *testing.T) {
	env := setupRouter(t)
	hostelID := uuid.New()

	env.stats.On("GetBookingStats", mock.Anything, hostelID, mock.Anything).
		Return(nil, domain.NewNotFoundError("hostel", hostelID.String())).Once()

	w := env.do(t, http.MethodGet, "/api/v1/landlord/hostels/"+hostelID.String()+"/stats", uuid.New(), auth.RoleLandlord, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLandlordStats_StudentForbidden(t *testing.T) {
	env := setupRouter(t)

	w := env.do(t, http.MethodGet, "/api/v1/landlord/stats", uuid.New(), auth.RoleStudent, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	env.stats.AssertNotCalled(t, "GetLandlordStats", mock.Anything, mock.Anything)
}

func TestPlatformStats(t *testing.T) {
	env := setupRouter(t)
	stats := bookingDomain.BuildStats(nil)

	env.stats.On("GetPlatformStats", mock.Anything).Return(&stats, nil).Once()

	w := env.do(t, http.MethodGet, "/api/v1/admin/stats/bookings", uuid.New(), auth.RoleAdmin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/admin/stats/bookings", uuid.New(), auth.RoleLandlord, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	env.stats.AssertExpectations(t)
}
