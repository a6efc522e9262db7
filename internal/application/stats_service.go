package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/internal/cache"
	bookingDomain "github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/internal/domain/hostel"
	"github.com/hostelhub/service-booking/internal/metrics"
	"github.com/hostelhub/service-booking/pkg/domain"
	"go.uber.org/zap"
)

// StatsService computes booking rollups for reporting. Results come from
// last-committed data and may be served from cache.
type StatsService struct {
	store  bookingDomain.Store
	cache  StatsCache
	clock  Clock
	logger *zap.Logger
}

// NewStatsService creates a new StatsService. statsCache and clock may be nil.
func NewStatsService(store bookingDomain.Store, statsCache StatsCache, clock Clock, logger *zap.Logger) *StatsService {
	if clock == nil {
		clock = systemClock
	}
	return &StatsService{store: store, cache: statsCache, clock: clock, logger: logger}
}

// GetBookingStats returns the stats of one hostel owned by landlordID.
func (s *StatsService) GetBookingStats(ctx context.Context, hostelID, landlordID uuid.UUID) (*bookingDomain.Stats, error) {
	h, err := s.store.Hostels().FindByID(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	if !h.OwnedBy(landlordID) {
		return nil, domain.NewNotFoundError("hostel", hostelID.String())
	}
	return s.compute(ctx, cache.HostelKey(hostelID), []*hostel.Hostel{h}, false)
}

// GetLandlordStats returns the stats across every hostel of a landlord.
func (s *StatsService) GetLandlordStats(ctx context.Context, landlordID uuid.UUID) (*bookingDomain.Stats, error) {
	hostels, err := s.store.Hostels().ListByLandlord(ctx, landlordID)
	if err != nil {
		return nil, err
	}
	return s.compute(ctx, cache.LandlordKey(landlordID), hostels, false)
}

// GetPlatformStats returns the stats across every booking (admin).
func (s *StatsService) GetPlatformStats(ctx context.Context) (*bookingDomain.Stats, error) {
	hostels, err := s.store.Hostels().ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.compute(ctx, cache.PlatformKey(), hostels, true)
}

func (s *StatsService) compute(ctx context.Context, key string, hostels []*hostel.Hostel, everyHostel bool) (*bookingDomain.Stats, error) {
	if cached := s.cached(ctx, key); cached != nil {
		return cached, nil
	}

	var ids []uuid.UUID
	if !everyHostel {
		ids = make([]uuid.UUID, 0, len(hostels))
		for _, h := range hostels {
			ids = append(ids, h.ID)
		}
	}

	rows, err := s.store.Bookings().AggregateByStatus(ctx, ids)
	if err != nil {
		return nil, err
	}

	today := bookingDomain.SingleDay(s.clock())
	ledger := bookingDomain.NewLedger(s.store.Bookings())
	activeGuests, capacity := 0, 0
	for _, h := range hostels {
		occupied, err := ledger.OccupiedGuests(ctx, h.ID, today)
		if err != nil {
			return nil, err
		}
		activeGuests += occupied
		capacity += h.Capacity
	}

	stats := bookingDomain.BuildStats(rows).WithOccupancy(activeGuests, capacity)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, &stats); err != nil {
			s.logger.Warn("failed to cache stats", zap.String("key", key), zap.Error(err))
		}
	}
	return &stats, nil
}

func (s *StatsService) cached(ctx context.Context, key string) *bookingDomain.Stats {
	if s.cache == nil {
		return nil
	}
	stats, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.IncStatsCache("error")
		s.logger.Warn("stats cache lookup failed", zap.String("key", key), zap.Error(err))
		return nil
	case stats == nil:
		metrics.IncStatsCache("miss")
		return nil
	default:
		metrics.IncStatsCache("hit")
		return stats
	}
}
