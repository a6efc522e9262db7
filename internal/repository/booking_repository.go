package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/pkg/database"
	"github.com/hostelhub/service-booking/pkg/domain"
	"gorm.io/gorm"
)

const (
	bookingNumberConstraint  = "bookings_booking_number_key"
	maxBookingNumberAttempts = 5
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingNumber   string    `gorm:"uniqueIndex;not null;size:20"`
	UserID          uuid.UUID `gorm:"type:uuid;index;not null"`
	HostelID        uuid.UUID `gorm:"type:uuid;index:idx_bookings_hostel_stay;not null"`
	CheckIn         time.Time `gorm:"type:date;index:idx_bookings_hostel_stay;not null"`
	CheckOut        time.Time `gorm:"type:date;index:idx_bookings_hostel_stay;not null"`
	Guests          int       `gorm:"not null"`
	TotalPriceCents int64     `gorm:"not null"`
	Currency        string    `gorm:"not null;size:3;default:'KES'"`
	Status          string    `gorm:"not null;size:20;index"`
	Version         int64     `gorm:"not null;default:1"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByIDForUser retrieves a booking only if userID holds it.
func (r *GormBookingRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindActiveOverlapping returns active bookings of the hostel whose stay
// overlaps window (check_in < window end AND check_out > window start).
func (r *GormBookingRepository) FindActiveOverlapping(ctx context.Context, hostelID uuid.UUID, window bookingDomain.DateRange) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("hostel_id = ? AND status IN ?", hostelID, activeStatuses()).
		Where("check_in < ? AND check_out > ?", window.CheckOut, window.CheckIn).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindActiveEndingOnOrAfter returns active bookings with check_out >= day.
func (r *GormBookingRepository) FindActiveEndingOnOrAfter(ctx context.Context, hostelID uuid.UUID, day time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("hostel_id = ? AND status IN ? AND check_out >= ?", hostelID, activeStatuses(), bookingDomain.Day(day)).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find running bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindByUser retrieves a guest's bookings with pagination.
func (r *GormBookingRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, filter, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	})
}

// FindByHostels retrieves bookings of the given hostels with pagination.
func (r *GormBookingRepository) FindByHostels(ctx context.Context, hostelIDs []uuid.UUID, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	if len(hostelIDs) == 0 {
		return []*bookingDomain.Booking{}, 0, nil
	}
	return r.paginate(ctx, filter, func(db *gorm.DB) *gorm.DB {
		return db.Where("hostel_id IN ?", hostelIDs)
	})
}

func (r *GormBookingRepository) paginate(ctx context.Context, filter bookingDomain.ListFilter, scope func(*gorm.DB) *gorm.DB) ([]*bookingDomain.Booking, int64, error) {
	page, perPage := domain.NormalizePage(filter.Page, filter.PerPage)

	query := scope(r.db.WithContext(ctx).Model(&BookingModel{}))
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// AggregateByStatus returns booking counts and price sums grouped by status.
func (r *GormBookingRepository) AggregateByStatus(ctx context.Context, hostelIDs []uuid.UUID) ([]bookingDomain.StatusAggregate, error) {
	if hostelIDs != nil && len(hostelIDs) == 0 {
		return nil, nil
	}

	type statusRow struct {
		Status       string
		Count        int64
		RevenueCents int64
	}
	query := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) AS count, COALESCE(SUM(total_price_cents), 0) AS revenue_cents")
	if hostelIDs != nil {
		query = query.Where("hostel_id IN ?", hostelIDs)
	}

	var rows []statusRow
	if err := query.Group("status").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings by status: %w", err)
	}

	aggregates := make([]bookingDomain.StatusAggregate, 0, len(rows))
	for _, row := range rows {
		aggregates = append(aggregates, bookingDomain.StatusAggregate{
			Status:       bookingDomain.BookingStatus(row.Status),
			Count:        row.Count,
			RevenueCents: row.RevenueCents,
		})
	}
	return aggregates, nil
}

// DeleteByHostel removes every booking of a hostel.
func (r *GormBookingRepository) DeleteByHostel(ctx context.Context, hostelID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("hostel_id = ?", hostelID).Delete(&BookingModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete hostel bookings: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Save persists a new booking. A booking number already taken is redrawn;
// each insert runs in its own savepoint so a collision does not abort an
// enclosing transaction.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	for attempt := 1; ; attempt++ {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(toBookingModel(bk)).Error
		})
		if err == nil {
			return nil
		}
		if !database.IsUniqueViolation(err, bookingNumberConstraint) {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		if attempt == maxBookingNumberAttempts {
			return domain.NewConflictError("could not allocate a unique booking number, retry the request")
		}
		if err := bk.RenewBookingNumber(); err != nil {
			return err
		}
	}
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// The caller has already called IncrementVersion.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"guests":            model.Guests,
			"total_price_cents": model.TotalPriceCents,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

func activeStatuses() []string {
	statuses := make([]string, len(bookingDomain.ActiveStatuses))
	for i, s := range bookingDomain.ActiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:              bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		UserID:          bk.UserID(),
		HostelID:        bk.HostelID(),
		CheckIn:         bk.Stay().CheckIn,
		CheckOut:        bk.Stay().CheckOut,
		Guests:          bk.Guests(),
		TotalPriceCents: bk.TotalPriceCents(),
		Currency:        bk.Currency(),
		Status:          string(bk.Status()),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	stay := bookingDomain.DateRange{
		CheckIn:  bookingDomain.Day(m.CheckIn),
		CheckOut: bookingDomain.Day(m.CheckOut),
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.UserID,
		m.HostelID,
		stay,
		m.Guests,
		m.TotalPriceCents,
		m.Currency,
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
