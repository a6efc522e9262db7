package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hostelhub/service-booking/internal/domain/account"
	bookingDomain "github.com/hostelhub/service-booking/internal/domain/booking"
	hostelDomain "github.com/hostelhub/service-booking/internal/domain/hostel"
	"github.com/hostelhub/service-booking/pkg/database"
	"github.com/hostelhub/service-booking/pkg/domain"
	"gorm.io/gorm"
)

// GormStore binds the repositories to one *gorm.DB, which may be a transaction.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Bookings returns the booking repository.
func (s *GormStore) Bookings() bookingDomain.BookingRepository {
	return NewGormBookingRepository(s.db)
}

// Hostels returns the hostel projection repository.
func (s *GormStore) Hostels() hostelDomain.Repository {
	return NewGormHostelRepository(s.db)
}

// Guests returns the guest projection repository.
func (s *GormStore) Guests() account.Repository {
	return NewGormGuestRepository(s.db)
}

// GormUnitOfWork runs work inside gorm transactions.
type GormUnitOfWork struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormUnitOfWork creates a unit of work. A positive lockTimeout bounds how
// long a transaction waits for row locks.
func NewGormUnitOfWork(db *gorm.DB, lockTimeout time.Duration) *GormUnitOfWork {
	return &GormUnitOfWork{db: db, lockTimeout: lockTimeout}
}

// Do runs fn in a transaction that commits when fn returns nil and rolls back
// otherwise. Serialization failures, deadlocks and lock timeouts become
// TransientConflict.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, store bookingDomain.Store) error) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}
		return fn(ctx, NewGormStore(tx))
	})
	if err != nil && domain.KindOf(err) == "" && database.IsTransient(err) {
		return domain.NewConflictError("the hostel is being booked concurrently, retry the request")
	}
	return err
}
