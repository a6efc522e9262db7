package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/internal/cache"
	"github.com/hostelhub/service-booking/internal/domain/account"
	bookingDomain "github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/internal/domain/hostel"
	"github.com/hostelhub/service-booking/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpsertHostel(t *testing.T) {
	db := newMemDB()
	statsCache := newMapStatsCache()
	service := NewCatalogService(db, statsCache, zap.NewNop())
	ctx := context.Background()

	h := &hostel.Hostel{ID: uuid.New(), LandlordID: uuid.New(), Name: "Harbor", Capacity: 3, PriceCents: 1500}
	require.NoError(t, service.UpsertHostel(ctx, h))

	stored, err := db.Hostels().FindByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Capacity)

	newOwner := uuid.New()
	moved := *h
	moved.LandlordID = newOwner
	moved.Capacity = 1
	statsCache.invalidated = nil
	require.NoError(t, service.UpsertHostel(ctx, &moved))

	stored, err = db.Hostels().FindByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, newOwner, stored.LandlordID)
	assert.ElementsMatch(t, []string{
		cache.HostelKey(h.ID), cache.LandlordKey(newOwner), cache.LandlordKey(h.LandlordID), cache.PlatformKey(),
	}, statsCache.invalidated)
}

func TestUpsertHostel_ShrinkingCapacityKeepsBookings(t *testing.T) {
	db := newMemDB()
	service := NewCatalogService(db, nil, zap.NewNop())
	ctx := context.Background()

	h := &hostel.Hostel{ID: uuid.New(), LandlordID: uuid.New(), Name: "Harbor", Capacity: 3}
	require.NoError(t, service.UpsertHostel(ctx, h))
	bk := seedBooking(t, db, h.ID, uuid.New(), "2024-01-02", "2024-01-10", 3, 0, bookingDomain.StatusConfirmed)

	h.Capacity = 1
	require.NoError(t, service.UpsertHostel(ctx, h))

	assert.Equal(t, bookingDomain.StatusConfirmed, db.booking(bk.ID()).Status())
}

func TestUpsertHostel_Invalid(t *testing.T) {
	db := newMemDB()
	service := NewCatalogService(db, nil, zap.NewNop())

	err := service.UpsertHostel(context.Background(), &hostel.Hostel{ID: uuid.New(), LandlordID: uuid.New(), Capacity: -1})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Empty(t, db.hostels)
}

func TestDeleteHostel_RemovesBookings(t *testing.T) {
	db := newMemDB()
	statsCache := newMapStatsCache()
	service := NewCatalogService(db, statsCache, zap.NewNop())
	ctx := context.Background()

	doomed := &hostel.Hostel{ID: uuid.New(), LandlordID: uuid.New(), Name: "Doomed", Capacity: 2}
	kept := &hostel.Hostel{ID: uuid.New(), LandlordID: doomed.LandlordID, Name: "Kept", Capacity: 2}
	db.putHostel(doomed)
	db.putHostel(kept)
	seedBooking(t, db, doomed.ID, uuid.New(), "2024-01-02", "2024-01-10", 1, 0, bookingDomain.StatusConfirmed)
	seedBooking(t, db, doomed.ID, uuid.New(), "2023-12-02", "2023-12-10", 1, 0, bookingDomain.StatusCompleted)
	survivor := seedBooking(t, db, kept.ID, uuid.New(), "2024-01-02", "2024-01-10", 1, 0, bookingDomain.StatusConfirmed)

	require.NoError(t, service.DeleteHostel(ctx, doomed.ID))

	_, err := db.Hostels().FindByID(ctx, doomed.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.Len(t, db.bookings, 1)
	assert.NotNil(t, db.booking(survivor.ID()))
	assert.Contains(t, statsCache.invalidated, cache.LandlordKey(doomed.LandlordID))
}

func TestDeleteHostel_Unknown(t *testing.T) {
	db := newMemDB()
	service := NewCatalogService(db, nil, zap.NewNop())

	assert.NoError(t, service.DeleteHostel(context.Background(), uuid.New()))
}

func TestUpsertGuest(t *testing.T) {
	db := newMemDB()
	service := NewCatalogService(db, nil, zap.NewNop())
	ctx := context.Background()

	g := &account.Guest{ID: uuid.New(), Name: "Brian", Email: "brian@example.com", Role: account.RoleStudent}
	require.NoError(t, service.UpsertGuest(ctx, g))

	stored, err := db.Guests().FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Brian", stored.Name)
}
