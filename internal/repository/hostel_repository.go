package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	hostelDomain "github.com/hostelhub/service-booking/internal/domain/hostel"
	"github.com/hostelhub/service-booking/pkg/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HostelModel is the GORM model for the hostels projection table.
type HostelModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	LandlordID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name       string    `gorm:"not null;size:200"`
	Location   string    `gorm:"size:200"`
	Capacity   int       `gorm:"not null"`
	PriceCents int64     `gorm:"not null"`
	Currency   string    `gorm:"not null;size:3;default:'KES'"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (HostelModel) TableName() string {
	return "hostels"
}

// GormHostelRepository is the GORM-based implementation of hostel.Repository.
type GormHostelRepository struct {
	db *gorm.DB
}

// NewGormHostelRepository creates a new GormHostelRepository.
func NewGormHostelRepository(db *gorm.DB) *GormHostelRepository {
	return &GormHostelRepository{db: db}
}

// FindByID retrieves a hostel by its identifier.
func (r *GormHostelRepository) FindByID(ctx context.Context, id uuid.UUID) (*hostelDomain.Hostel, error) {
	return r.first(ctx, r.db.WithContext(ctx), id)
}

// LockByID retrieves a hostel with SELECT ... FOR UPDATE. Outside a
// transaction the lock is released immediately.
func (r *GormHostelRepository) LockByID(ctx context.Context, id uuid.UUID) (*hostelDomain.Hostel, error) {
	return r.first(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormHostelRepository) first(_ context.Context, db *gorm.DB, id uuid.UUID) (*hostelDomain.Hostel, error) {
	var model HostelModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("hostel", id.String())
		}
		return nil, fmt.Errorf("failed to find hostel: %w", err)
	}
	return toDomainHostel(&model), nil
}

// FindByIDs retrieves hostels keyed by ID.
func (r *GormHostelRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*hostelDomain.Hostel, error) {
	result := make(map[uuid.UUID]*hostelDomain.Hostel, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var models []HostelModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find hostels: %w", err)
	}
	for i := range models {
		result[models[i].ID] = toDomainHostel(&models[i])
	}
	return result, nil
}

// ListByLandlord retrieves every hostel owned by a landlord.
func (r *GormHostelRepository) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]*hostelDomain.Hostel, error) {
	var models []HostelModel
	if err := r.db.WithContext(ctx).Where("landlord_id = ?", landlordID).Order("name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list landlord hostels: %w", err)
	}
	return toDomainHostels(models), nil
}

// ListAll retrieves every hostel.
func (r *GormHostelRepository) ListAll(ctx context.Context) ([]*hostelDomain.Hostel, error) {
	var models []HostelModel
	if err := r.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list hostels: %w", err)
	}
	return toDomainHostels(models), nil
}

// Upsert inserts a hostel or replaces it when the stored row is not newer.
func (r *GormHostelRepository) Upsert(ctx context.Context, h *hostelDomain.Hostel) error {
	model := toHostelModel(h)
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"landlord_id", "name", "location", "capacity", "price_cents", "currency", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "hostels.updated_at <= excluded.updated_at"},
		}},
	}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to upsert hostel: %w", err)
	}
	return nil
}

// Delete removes a hostel projection row.
func (r *GormHostelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&HostelModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete hostel: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toHostelModel(h *hostelDomain.Hostel) *HostelModel {
	return &HostelModel{
		ID:         h.ID,
		LandlordID: h.LandlordID,
		Name:       h.Name,
		Location:   h.Location,
		Capacity:   h.Capacity,
		PriceCents: h.PriceCents,
		Currency:   h.CurrencyOrDefault(),
		UpdatedAt:  h.UpdatedAt,
	}
}

func toDomainHostel(m *HostelModel) *hostelDomain.Hostel {
	return &hostelDomain.Hostel{
		ID:         m.ID,
		LandlordID: m.LandlordID,
		Name:       m.Name,
		Location:   m.Location,
		Capacity:   m.Capacity,
		PriceCents: m.PriceCents,
		Currency:   m.Currency,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toDomainHostels(models []HostelModel) []*hostelDomain.Hostel {
	hostels := make([]*hostelDomain.Hostel, len(models))
	for i := range models {
		hostels[i] = toDomainHostel(&models[i])
	}
	return hostels
}
