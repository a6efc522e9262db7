package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/internal/cache"
	"github.com/hostelhub/service-booking/internal/domain/account"
	bookingDomain "github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/internal/domain/hostel"
	"go.uber.org/zap"
)

// CatalogService keeps the local hostel and guest projections in step with
// the listing and account services.
type CatalogService struct {
	uow    bookingDomain.UnitOfWork
	stats  StatsCache
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService. stats may be nil.
func NewCatalogService(uow bookingDomain.UnitOfWork, stats StatsCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{uow: uow, stats: stats, logger: logger}
}

// UpsertHostel stores the latest version of a listing.
func (s *CatalogService) UpsertHostel(ctx context.Context, h *hostel.Hostel) error {
	if err := h.Validate(); err != nil {
		return err
	}
	var previous *hostel.Hostel
	err := s.uow.Do(ctx, func(ctx context.Context, store bookingDomain.Store) error {
		existing, err := store.Hostels().FindByIDs(ctx, []uuid.UUID{h.ID})
		if err != nil {
			return err
		}
		previous = existing[h.ID]
		return store.Hostels().Upsert(ctx, h)
	})
	if err != nil {
		return err
	}

	s.logger.Info("hostel projection updated",
		zap.String("hostel_id", h.ID.String()),
		zap.Int("capacity", h.Capacity),
	)
	keys := []string{cache.HostelKey(h.ID), cache.LandlordKey(h.LandlordID), cache.PlatformKey()}
	if previous != nil && previous.LandlordID != h.LandlordID {
		keys = append(keys, cache.LandlordKey(previous.LandlordID))
	}
	s.invalidate(ctx, keys...)
	return nil
}

// DeleteHostel removes a listing together with all of its bookings.
func (s *CatalogService) DeleteHostel(ctx context.Context, hostelID uuid.UUID) error {
	var (
		removed  int64
		landlord uuid.UUID
	)
	err := s.uow.Do(ctx, func(ctx context.Context, store bookingDomain.Store) error {
		existing, err := store.Hostels().FindByIDs(ctx, []uuid.UUID{hostelID})
		if err != nil {
			return err
		}
		if h, ok := existing[hostelID]; ok {
			landlord = h.LandlordID
		}
		removed, err = store.Bookings().DeleteByHostel(ctx, hostelID)
		if err != nil {
			return err
		}
		return store.Hostels().Delete(ctx, hostelID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("hostel projection deleted",
		zap.String("hostel_id", hostelID.String()),
		zap.Int64("bookings_removed", removed),
	)
	keys := []string{cache.HostelKey(hostelID), cache.PlatformKey()}
	if landlord != uuid.Nil {
		keys = append(keys, cache.LandlordKey(landlord))
	}
	s.invalidate(ctx, keys...)
	return nil
}

// UpsertGuest stores the latest snapshot of a user account.
func (s *CatalogService) UpsertGuest(ctx context.Context, g *account.Guest) error {
	return s.uow.Do(ctx, func(ctx context.Context, store bookingDomain.Store) error {
		return store.Guests().Upsert(ctx, g)
	})
}

func (s *CatalogService) invalidate(ctx context.Context, keys ...string) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Invalidate(ctx, keys...); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}
