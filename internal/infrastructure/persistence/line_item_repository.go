package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/delivery/backend/internal/domain/rate"
	"github.com/delivery/backend/internal/domain/shared"
	"github.com/delivery/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLineItemRepository implements rate.LineItemRepository using GORM
type GormLineItemRepository struct {
	db *gorm.DB
}

// NewGormLineItemRepository creates a new GormLineItemRepository
func NewGormLineItemRepository(db *gorm.DB) *GormLineItemRepository {
	return &GormLineItemRepository{db: db}
}

// FindByID finds a line item by ID
func (r *GormLineItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*rate.LineItem, error) {
	var model models.LineItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	item := model.ToDomain()
	return &item, nil
}

// FindByEstimate returns the estimate's line items ordered by sort order, then ID
func (r *GormLineItemRepository) FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]rate.LineItem, error) {
	var rows []models.LineItemModel
	if err := r.db.WithContext(ctx).
		Where("estimate_id = ?", estimateID).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]rate.LineItem, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return items, nil
}

// UpdateRates writes resolved rates in one transaction. Rows flagged as
// manual overrides are excluded by the WHERE clause.
func (r *GormLineItemRepository) UpdateRates(ctx context.Context, updates []rate.RateUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			err := tx.Model(&models.LineItemModel{}).
				Where("id = ? AND manual_override = ?", u.LineItemID, false).
				Updates(map[string]any{
					"rate":       u.Rate,
					"cost_rate":  u.CostRate,
					"updated_at": now,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

var _ rate.LineItemRepository = (*GormLineItemRepository)(nil)
