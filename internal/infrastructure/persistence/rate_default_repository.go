package persistence

import (
	"context"

	"github.com/delivery/backend/internal/domain/rate"
	"github.com/delivery/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRateRepository implements rate.UserRepository using GORM
type GormUserRateRepository struct {
	db *gorm.DB
}

// NewGormUserRateRepository creates a new GormUserRateRepository
func NewGormUserRateRepository(db *gorm.DB) *GormUserRateRepository {
	return &GormUserRateRepository{db: db}
}

// FindByIDs loads the default rates of the given users in one query
func (r *GormUserRateRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]rate.UserDefaults, error) {
	result := make(map[uuid.UUID]rate.UserDefaults, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.UserRateModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// GormRoleRateRepository implements rate.RoleRepository using GORM
type GormRoleRateRepository struct {
	db *gorm.DB
}

// NewGormRoleRateRepository creates a new GormRoleRateRepository
func NewGormRoleRateRepository(db *gorm.DB) *GormRoleRateRepository {
	return &GormRoleRateRepository{db: db}
}

// FindByIDs loads the rack rates of the given roles in one query
func (r *GormRoleRateRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]rate.RoleDefaults, error) {
	result := make(map[uuid.UUID]rate.RoleDefaults, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.RoleRateModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

var (
	_ rate.UserRepository = (*GormUserRateRepository)(nil)
	_ rate.RoleRepository = (*GormRoleRateRepository)(nil)
)
