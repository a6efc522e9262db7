package application

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/internal/cache"
	"github.com/hostelhub/service-booking/internal/domain/account"
	bookingDomain "github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/internal/domain/hostel"
	"github.com/hostelhub/service-booking/internal/export"
	"github.com/hostelhub/service-booking/internal/metrics"
	"github.com/hostelhub/service-booking/pkg/domain"
	"github.com/hostelhub/service-booking/pkg/events"
	"github.com/hostelhub/service-booking/pkg/kafka"
	"go.uber.org/zap"
)

// An xlsx export holds at most exportLimit rows, fetched exportPageSize at a time.
const (
	exportLimit    = 5000
	exportPageSize = 100
)

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	store     bookingDomain.Store
	uow       bookingDomain.UnitOfWork
	pricing   bookingDomain.PricingStrategy
	publisher EventPublisher
	stats     StatsCache
	clock     Clock
	logger    *zap.Logger
}

// BookingServiceOption customizes a BookingService.
type BookingServiceOption func(*BookingService)

// WithClock overrides the source of "today".
func WithClock(clock Clock) BookingServiceOption {
	return func(s *BookingService) { s.clock = clock }
}

// WithStatsCache makes mutations invalidate cached stats.
func WithStatsCache(c StatsCache) BookingServiceOption {
	return func(s *BookingService) { s.stats = c }
}

// NewBookingService creates a new BookingService. store serves reads outside
// transactions; uow runs every mutation.
func NewBookingService(
	store bookingDomain.Store,
	uow bookingDomain.UnitOfWork,
	pricing bookingDomain.PricingStrategy,
	publisher EventPublisher,
	logger *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		store:     store,
		uow:       uow,
		pricing:   pricing,
		publisher: publisher,
		clock:     systemClock,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking admits and persists a new booking for the caller.
//
// The hostel row is locked for the whole transaction, so concurrent creations
// on one hostel run the occupancy scan and the insert one at a time.
func (s *BookingService) CreateBooking(ctx context.Context, caller account.Caller, req CreateBookingRequest) (*BookingDTO, error) {
	if !caller.CanHoldBookings() {
		return nil, domain.NewRoleForbiddenError("landlords cannot make bookings")
	}

	stay, err := bookingDomain.ParseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if stay.StartsBefore(s.clock()) {
		return nil, domain.NewInvalidRangeError("check-in date cannot be in the past")
	}
	if req.Guests < 1 {
		return nil, domain.NewValidationError("guests must be at least 1")
	}

	start := time.Now()
	var (
		bk *bookingDomain.Booking
		h  *hostel.Hostel
	)
	err = s.uow.Do(ctx, func(ctx context.Context, store bookingDomain.Store) error {
		var err error
		h, err = store.Hostels().LockByID(ctx, req.HostelID)
		if err != nil {
			return err
		}

		checker := bookingDomain.NewAvailabilityChecker(store.Hostels(), bookingDomain.NewLedger(store.Bookings()))
		decision, err := checker.Evaluate(ctx, h, stay, req.Guests)
		if err != nil {
			return err
		}
		metrics.ObserveAdmission(decision.Admitted)
		if !decision.Admitted {
			return domain.NewCapacityExceededError(fmt.Sprintf(
				"hostel has %d of %d guest places free for %s, %d requested",
				decision.Remaining(), decision.Capacity, stay, req.Guests))
		}

		totalCents, err := s.pricing.Calculate(bookingDomain.PricingParams{
			MonthlyRateCents: h.PriceCents,
			Nights:           stay.Nights(),
			Guests:           req.Guests,
		})
		if err != nil {
			return domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
		}

		bk, err = bookingDomain.NewBooking(caller.UserID, h.ID, stay, req.Guests, totalCents, h.CurrencyOrDefault(), s.clock())
		if err != nil {
			return err
		}
		return store.Bookings().Save(ctx, bk)
	})
	metrics.ObserveCreate(start)
	if err != nil {
		s.observeFailure(err)
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("hostel_id", h.ID.String()),
		zap.String("stay", stay.String()),
		zap.Int("guests", bk.Guests()),
	)
	metrics.IncTransition(string(bk.Status()))

	s.publishEvent(ctx, events.BookingCreated, bk.ID().String(), events.BookingCreatedEvent{
		BookingID:       bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		UserID:          bk.UserID(),
		HostelID:        h.ID,
		LandlordID:      h.LandlordID,
		CheckIn:         stay.CheckIn.Format(bookingDomain.DateLayout),
		CheckOut:        stay.CheckOut.Format(bookingDomain.DateLayout),
		Guests:          bk.Guests(),
		TotalPriceCents: bk.TotalPriceCents(),
		Currency:        bk.Currency(),
		OccurredAt:      s.clock(),
	})
	s.invalidateStats(ctx, h)

	result := toBookingDTO(bk, h, s.guestSnapshot(ctx, bk.UserID()))
	return &result, nil
}

// GetUserBookings lists the caller's bookings, newest first.
func (s *BookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, status string, page, perPage int) (*domain.PaginatedResult[BookingDTO], error) {
	filter, err := newListFilter(status, page, perPage)
	if err != nil {
		return nil, err
	}

	bookings, total, err := s.store.Bookings().FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	hostels, err := s.store.Hostels().FindByIDs(ctx, hostelIDsOf(bookings))
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk, hostels[bk.HostelID()], nil)
	}

	result := domain.NewPaginatedResult(dtos, total, filter.Page, filter.PerPage)
	return &result, nil
}

// GetBookingByID returns one of the caller's bookings.
func (s *BookingService) GetBookingByID(ctx context.Context, bookingID, userID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.store.Bookings().FindByIDForUser(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	result := toBookingDTO(bk, s.hostelSnapshot(ctx, bk.HostelID()), s.guestSnapshot(ctx, bk.UserID()))
	return &result, nil
}

// CancelBooking cancels one of the caller's bookings before its check-in day.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) (*BookingDTO, error) {
	var bk *bookingDomain.Booking
	err := s.uow.Do(ctx, func(ctx context.Context, store bookingDomain.Store) error {
		var err error
		bk, err = store.Bookings().FindByIDForUser(ctx, bookingID, userID)
		if err != nil {
			return err
		}
		if err := bk.Cancel(s.clock()); err != nil {
			return err
		}
		bk.IncrementVersion()
		return store.Bookings().Update(ctx, bk)
	})
	if err != nil {
		s.observeFailure(err)
		return nil, err
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_id", bk.ID().String()),
		zap.String("user_id", userID.String()),
	)
	metrics.IncTransition(string(bk.Status()))

	s.publishEvent(ctx, events.BookingCancelled, bk.ID().String(), events.BookingCancelledEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		UserID:        bk.UserID(),
		HostelID:      bk.HostelID(),
		OccurredAt:    s.clock(),
	})

	h := s.hostelSnapshot(ctx, bk.HostelID())
	s.invalidateStats(ctx, h)

	result := toBookingDTO(bk, h, nil)
	return &result, nil
}

// GetHostelBookings lists the bookings of a hostel owned by landlordID.
func (s *BookingService) GetHostelBookings(ctx context.Context, hostelID, landlordID uuid.UUID, status string, page, perPage int) (*domain.PaginatedResult[LandlordBookingDTO], error) {
	h, err := s.ownedHostel(ctx, s.store.Hostels(), hostelID, landlordID)
	if err != nil {
		return nil, err
	}
	return s.landlordPage(ctx, []*hostel.Hostel{h}, status, page, perPage)
}

// GetLandlordBookings lists the bookings of every hostel owned by landlordID.
func (s *BookingService) GetLandlordBookings(ctx context.Context, landlordID uuid.UUID, status string, page, perPage int) (*domain.PaginatedResult[LandlordBookingDTO], error) {
	hostels, err := s.store.Hostels().ListByLandlord(ctx, landlordID)
	if err != nil {
		return nil, err
	}
	return s.landlordPage(ctx, hostels, status, page, perPage)
}

// UpdateBookingStatus lets the owning landlord move a booking along its lifecycle.
// Ownership is checked before the target status, so a foreign landlord always
// sees NotFound.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status string, landlordID uuid.UUID) (*BookingDTO, error) {
	var (
		bk        *bookingDomain.Booking
		h         *hostel.Hostel
		oldStatus bookingDomain.BookingStatus
	)
	err := s.uow.Do(ctx, func(ctx context.Context, store bookingDomain.Store) error {
		var err error
		bk, err = store.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		h, err = s.ownedHostel(ctx, store.Hostels(), bk.HostelID(), landlordID)
		if err != nil {
			return err
		}

		target, err := bookingDomain.ParseTargetStatus(status)
		if err != nil {
			return err
		}

		oldStatus = bk.Status()
		if err := bk.TransitionTo(target, s.clock()); err != nil {
			return err
		}
		bk.IncrementVersion()
		return store.Bookings().Update(ctx, bk)
	})
	if err != nil {
		s.observeFailure(err)
		return nil, err
	}

	s.logger.Info("booking status updated",
		zap.String("booking_id", bk.ID().String()),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(bk.Status())),
		zap.String("landlord_id", landlordID.String()),
	)
	metrics.IncTransition(string(bk.Status()))

	s.publishEvent(ctx, events.BookingStatusChanged, bk.ID().String(), events.BookingStatusChangedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		HostelID:      bk.HostelID(),
		ChangedBy:     landlordID,
		OldStatus:     string(oldStatus),
		NewStatus:     string(bk.Status()),
		OccurredAt:    s.clock(),
	})
	s.invalidateStats(ctx, h)

	result := toBookingDTO(bk, h, s.guestSnapshot(ctx, bk.UserID()))
	return &result, nil
}

// GetAvailableRooms returns the free guest places of a hostel. Without dates
// it counts every active booking that has not yet checked out.
func (s *BookingService) GetAvailableRooms(ctx context.Context, hostelID uuid.UUID, checkIn, checkOut string) (*AvailableRoomsDTO, error) {
	h, err := s.store.Hostels().FindByID(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	ledger := bookingDomain.NewLedger(s.store.Bookings())

	if checkIn == "" || checkOut == "" {
		committed, err := ledger.CommittedGuestsFrom(ctx, hostelID, s.clock())
		if err != nil {
			return nil, err
		}
		return &AvailableRoomsDTO{
			HostelID:       hostelID,
			Capacity:       h.Capacity,
			AvailableRooms: bookingDomain.Decision{Capacity: h.Capacity, Occupied: committed}.Remaining(),
		}, nil
	}

	window, err := bookingDomain.ParseDateRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	decision, err := bookingDomain.NewAvailabilityChecker(s.store.Hostels(), ledger).Evaluate(ctx, h, window, 0)
	if err != nil {
		return nil, err
	}
	return &AvailableRoomsDTO{
		HostelID:       hostelID,
		Capacity:       h.Capacity,
		AvailableRooms: decision.Remaining(),
		CheckIn:        checkIn,
		CheckOut:       checkOut,
	}, nil
}

// CheckAvailability reports whether guests more people fit into the hostel.
// The answer reflects last-committed data and is not a reservation.
func (s *BookingService) CheckAvailability(ctx context.Context, hostelID uuid.UUID, checkIn, checkOut string, guests int) (*AvailabilityDTO, error) {
	window, err := bookingDomain.ParseDateRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if guests < 1 {
		return nil, domain.NewValidationError("guests must be at least 1")
	}

	h, err := s.store.Hostels().FindByID(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	checker := bookingDomain.NewAvailabilityChecker(s.store.Hostels(), bookingDomain.NewLedger(s.store.Bookings()))
	decision, err := checker.Evaluate(ctx, h, window, guests)
	if err != nil {
		return nil, err
	}

	return &AvailabilityDTO{
		HostelID:  hostelID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    guests,
		Available: decision.Admitted,
		Remaining: decision.Remaining(),
	}, nil
}

// ExportLandlordBookings renders a landlord's bookings as an xlsx workbook.
func (s *BookingService) ExportLandlordBookings(ctx context.Context, landlordID uuid.UUID, status string) ([]byte, error) {
	var items []LandlordBookingDTO
	for page := 1; len(items) < exportLimit; page++ {
		result, err := s.GetLandlordBookings(ctx, landlordID, status, page, exportPageSize)
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if page >= result.Pages {
			break
		}
	}

	rows := make([]export.BookingRow, len(items))
	for i, b := range items {
		rows[i] = export.BookingRow{
			BookingNumber: b.BookingNumber,
			HostelName:    b.HostelName,
			CustomerName:  b.CustomerName,
			CustomerEmail: b.CustomerEmail,
			CheckIn:       b.CheckIn,
			CheckOut:      b.CheckOut,
			Nights:        b.Nights,
			Guests:        b.Guests,
			Status:        b.Status,
			TotalPrice:    float64(b.TotalPriceCents) / 100,
			Currency:      b.Currency,
			CreatedAt:     b.CreatedAt.Format(time.RFC3339),
		}
	}

	var buf bytes.Buffer
	title := fmt.Sprintf("Bookings exported %s", s.clock().Format(bookingDomain.DateLayout))
	if err := export.WriteBookings(&buf, title, rows); err != nil {
		return nil, fmt.Errorf("failed to export bookings: %w", err)
	}
	return buf.Bytes(), nil
}

// --- helpers ---

func (s *BookingService) landlordPage(ctx context.Context, hostels []*hostel.Hostel, status string, page, perPage int) (*domain.PaginatedResult[LandlordBookingDTO], error) {
	filter, err := newListFilter(status, page, perPage)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*hostel.Hostel, len(hostels))
	ids := make([]uuid.UUID, 0, len(hostels))
	for _, h := range hostels {
		byID[h.ID] = h
		ids = append(ids, h.ID)
	}

	bookings, total, err := s.store.Bookings().FindByHostels(ctx, ids, filter)
	if err != nil {
		return nil, err
	}

	guests, err := s.store.Guests().FindByIDs(ctx, userIDsOf(bookings))
	if err != nil {
		return nil, err
	}

	dtos := make([]LandlordBookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toLandlordBookingDTO(bk, byID[bk.HostelID()], guests[bk.UserID()])
	}

	result := domain.NewPaginatedResult(dtos, total, filter.Page, filter.PerPage)
	return &result, nil
}

// ownedHostel loads a hostel and hides it from anyone but its landlord.
func (s *BookingService) ownedHostel(ctx context.Context, repo hostel.Repository, hostelID, landlordID uuid.UUID) (*hostel.Hostel, error) {
	h, err := repo.FindByID(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	if !h.OwnedBy(landlordID) {
		return nil, domain.NewNotFoundError("hostel", hostelID.String())
	}
	return h, nil
}

func (s *BookingService) hostelSnapshot(ctx context.Context, hostelID uuid.UUID) *hostel.Hostel {
	h, err := s.store.Hostels().FindByID(ctx, hostelID)
	if err != nil {
		s.logger.Warn("hostel snapshot unavailable", zap.String("hostel_id", hostelID.String()), zap.Error(err))
		return nil
	}
	return h
}

func (s *BookingService) guestSnapshot(ctx context.Context, userID uuid.UUID) *account.Guest {
	g, err := s.store.Guests().FindByID(ctx, userID)
	if err != nil {
		if !domain.IsKind(err, domain.KindNotFound) {
			s.logger.Warn("guest snapshot unavailable", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return nil
	}
	return g
}

func (s *BookingService) observeFailure(err error) {
	if domain.IsKind(err, domain.KindTransientConflict) {
		metrics.IncConflict()
		s.logger.Warn("booking transaction conflicted", zap.Error(err))
	}
}

// invalidateStats drops cached stats that include h. Failures only delay
// fresh numbers until the TTL expires.
func (s *BookingService) invalidateStats(ctx context.Context, h *hostel.Hostel) {
	if s.stats == nil || h == nil {
		return
	}
	keys := []string{cache.HostelKey(h.ID), cache.LandlordKey(h.LandlordID), cache.PlatformKey()}
	if err := s.stats.Invalidate(ctx, keys...); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.String("hostel_id", h.ID.String()), zap.Error(err))
	}
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, subject string, data interface{}) {
	if s.publisher == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = subject

	if err := s.publisher.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func newListFilter(status string, page, perPage int) (bookingDomain.ListFilter, error) {
	page, perPage = domain.NormalizePage(page, perPage)
	filter := bookingDomain.ListFilter{Page: page, PerPage: perPage}
	if status != "" {
		st, err := bookingDomain.ParseBookingStatus(status)
		if err != nil {
			return bookingDomain.ListFilter{}, err
		}
		filter.Status = &st
	}
	return filter, nil
}

func hostelIDsOf(bookings []*bookingDomain.Booking) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(bookings))
	ids := make([]uuid.UUID, 0, len(bookings))
	for _, bk := range bookings {
		if !seen[bk.HostelID()] {
			seen[bk.HostelID()] = true
			ids = append(ids, bk.HostelID())
		}
	}
	return ids
}

func userIDsOf(bookings []*bookingDomain.Booking) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(bookings))
	ids := make([]uuid.UUID, 0, len(bookings))
	for _, bk := range bookings {
		if !seen[bk.UserID()] {
			seen[bk.UserID()] = true
			ids = append(ids, bk.UserID())
		}
	}
	return ids
}
