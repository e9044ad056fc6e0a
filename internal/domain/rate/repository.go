package rate

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemRepository provides the rate view of estimate line items
type LineItemRepository interface {
	// FindByID finds a line item by its ID
	// Returns shared.ErrNotFound if not found
	FindByID(ctx context.Context, id uuid.UUID) (*LineItem, error)

	// FindByEstimate returns every line item of the estimate in line-item order
	FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]LineItem, error)

	// UpdateRates writes resolved rates back onto line items in a single transaction.
	// Line items flagged as manual overrides are left untouched.
	UpdateRates(ctx context.Context, updates []RateUpdate) error
}

// OverrideRepository provides estimate-scoped rate overrides
type OverrideRepository interface {
	// FindByEstimate returns the estimate's overrides in load order
	// (creation time, then ID). Resolution picks the first match in this order.
	FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]Override, error)
}

// UserRepository provides user default rates
type UserRepository interface {
	// FindByIDs returns the users that exist among ids, keyed by ID.
	// Missing IDs are simply absent from the map.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]UserDefaults, error)
}

// RoleRepository provides role rack rates
type RoleRepository interface {
	// FindByIDs returns the roles that exist among ids, keyed by ID.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]RoleDefaults, error)
}

// RateUpdate is a resolved rate to persist onto a line item
type RateUpdate struct {
	LineItemID uuid.UUID
	Rate       decimal.NullDecimal
	CostRate   decimal.NullDecimal
}
