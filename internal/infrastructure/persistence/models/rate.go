package models

import (
	"time"

	"github.com/delivery/backend/internal/domain/rate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemModel is the persistence model for the rate view of an estimate line item.
type LineItemModel struct {
	BaseModel
	EstimateID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	PersonID       *uuid.UUID          `gorm:"type:uuid;index"`
	RoleID         *uuid.UUID          `gorm:"type:uuid;index"`
	Rate           decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	CostRate       decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	ManualOverride bool                `gorm:"not null;default:false"`
	SortOrder      int                 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "line_items"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *LineItemModel) ToDomain() rate.LineItem {
	return rate.LineItem{
		ID:             m.ID,
		EstimateID:     m.EstimateID,
		PersonID:       m.PersonID,
		RoleID:         m.RoleID,
		Rate:           m.Rate,
		CostRate:       m.CostRate,
		ManualOverride: m.ManualOverride,
		SortOrder:      m.SortOrder,
	}
}

// FromDomain populates the persistence model from a domain LineItem.
func (m *LineItemModel) FromDomain(li rate.LineItem) {
	m.ID = li.ID
	m.EstimateID = li.EstimateID
	m.PersonID = li.PersonID
	m.RoleID = li.RoleID
	m.Rate = li.Rate
	m.CostRate = li.CostRate
	m.ManualOverride = li.ManualOverride
	m.SortOrder = li.SortOrder
}

// RateOverrideModel is the persistence model for an estimate rate override.
type RateOverrideModel struct {
	BaseModel
	EstimateID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	SubjectType    rate.SubjectType    `gorm:"type:varchar(10);not null"`
	SubjectID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	Rate           decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	CostRate       decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	EffectiveStart time.Time           `gorm:"type:date;not null"`
	EffectiveEnd   *time.Time          `gorm:"type:date"`
	LineItemIDs    UUIDList            `gorm:"column:line_item_ids;type:text;not null;default:'[]'"`
}

// TableName returns the table name for GORM
func (RateOverrideModel) TableName() string {
	return "rate_overrides"
}

// ToDomain converts the persistence model to a domain Override.
func (m *RateOverrideModel) ToDomain() rate.Override {
	return rate.Override{
		BaseEntity:     m.BaseModel.ToDomain(),
		EstimateID:     m.EstimateID,
		SubjectType:    m.SubjectType,
		SubjectID:      m.SubjectID,
		Rate:           m.Rate,
		CostRate:       m.CostRate,
		EffectiveStart: m.EffectiveStart,
		EffectiveEnd:   m.EffectiveEnd,
		LineItemIDs:    []uuid.UUID(m.LineItemIDs),
	}
}

// FromDomain populates the persistence model from a domain Override.
// Effective dates are stored as calendar dates at UTC midnight.
func (m *RateOverrideModel) FromDomain(o rate.Override) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.EstimateID = o.EstimateID
	m.SubjectType = o.SubjectType
	m.SubjectID = o.SubjectID
	m.Rate = o.Rate
	m.CostRate = o.CostRate
	m.EffectiveStart = rate.DateOf(o.EffectiveStart).Time()
	m.EffectiveEnd = nil
	if o.EffectiveEnd != nil {
		end := rate.DateOf(*o.EffectiveEnd).Time()
		m.EffectiveEnd = &end
	}
	m.LineItemIDs = UUIDList(o.LineItemIDs)
}

// UserRateModel is the rate view of the users table.
type UserRateModel struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key"`
	DisplayName     string              `gorm:"type:varchar(200);not null"`
	DefaultRate     decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	DefaultCostRate decimal.NullDecimal `gorm:"type:decimal(12,2)"`
}

// TableName returns the table name for GORM
func (UserRateModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to domain UserDefaults.
func (m *UserRateModel) ToDomain() rate.UserDefaults {
	return rate.UserDefaults{
		ID:              m.ID,
		DisplayName:     m.DisplayName,
		DefaultRate:     m.DefaultRate,
		DefaultCostRate: m.DefaultCostRate,
	}
}

// RoleRateModel is the rate view of the roles table.
type RoleRateModel struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key"`
	Name            string              `gorm:"type:varchar(100);not null"`
	DefaultRackRate decimal.NullDecimal `gorm:"type:decimal(12,2)"`
}

// TableName returns the table name for GORM
func (RoleRateModel) TableName() string {
	return "roles"
}

// ToDomain converts the persistence model to domain RoleDefaults.
func (m *RoleRateModel) ToDomain() rate.RoleDefaults {
	return rate.RoleDefaults{
		ID:              m.ID,
		Name:            m.Name,
		DefaultRackRate: m.DefaultRackRate,
	}
}
