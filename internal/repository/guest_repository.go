package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/internal/domain/account"
	"github.com/hostelhub/service-booking/pkg/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GuestModel is the GORM model for the guests projection table.
type GuestModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:200"`
	Email     string    `gorm:"size:255"`
	Role      string    `gorm:"not null;size:20"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (GuestModel) TableName() string {
	return "guests"
}

// GormGuestRepository is the GORM-based implementation of account.Repository.
type GormGuestRepository struct {
	db *gorm.DB
}

// NewGormGuestRepository creates a new GormGuestRepository.
func NewGormGuestRepository(db *gorm.DB) *GormGuestRepository {
	return &GormGuestRepository{db: db}
}

// FindByID retrieves a guest snapshot.
func (r *GormGuestRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Guest, error) {
	var model GuestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("user", id.String())
		}
		return nil, fmt.Errorf("failed to find guest: %w", err)
	}
	return toDomainGuest(&model), nil
}

// FindByIDs retrieves guest snapshots keyed by ID.
func (r *GormGuestRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*account.Guest, error) {
	result := make(map[uuid.UUID]*account.Guest, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var models []GuestModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find guests: %w", err)
	}
	for i := range models {
		result[models[i].ID] = toDomainGuest(&models[i])
	}
	return result, nil
}

// Upsert inserts a guest snapshot or replaces it when the stored row is not newer.
func (r *GormGuestRepository) Upsert(ctx context.Context, g *account.Guest) error {
	model := &GuestModel{
		ID:        g.ID,
		Name:      g.Name,
		Email:     g.Email,
		Role:      string(g.Role),
		UpdatedAt: g.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "role", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "guests.updated_at <= excluded.updated_at"},
		}},
	}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to upsert guest: %w", err)
	}
	return nil
}

func toDomainGuest(m *GuestModel) *account.Guest {
	return &account.Guest{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      account.Role(m.Role),
		UpdatedAt: m.UpdatedAt,
	}
}
