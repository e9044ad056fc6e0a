package persistence

import (
	"context"

	"github.com/delivery/backend/internal/domain/rate"
	"github.com/delivery/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRateOverrideRepository implements rate.OverrideRepository using GORM
type GormRateOverrideRepository struct {
	db *gorm.DB
}

// NewGormRateOverrideRepository creates a new GormRateOverrideRepository
func NewGormRateOverrideRepository(db *gorm.DB) *GormRateOverrideRepository {
	return &GormRateOverrideRepository{db: db}
}

// FindByEstimate returns the estimate's overrides in creation order.
// The ID tie-break keeps the order stable for overrides created in the same instant.
func (r *GormRateOverrideRepository) FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]rate.Override, error) {
	var rows []models.RateOverrideModel
	if err := r.db.WithContext(ctx).
		Where("estimate_id = ?", estimateID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	overrides := make([]rate.Override, len(rows))
	for i := range rows {
		overrides[i] = rows[i].ToDomain()
	}
	return overrides, nil
}

// Save inserts or updates an override
func (r *GormRateOverrideRepository) Save(ctx context.Context, override rate.Override) error {
	var model models.RateOverrideModel
	model.FromDomain(override)
	return r.db.WithContext(ctx).Save(&model).Error
}

var _ rate.OverrideRepository = (*GormRateOverrideRepository)(nil)
