package rate

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserDefaults is a user's estimate-independent rate card
type UserDefaults struct {
	ID              uuid.UUID
	DisplayName     string
	DefaultRate     decimal.NullDecimal
	DefaultCostRate decimal.NullDecimal
}

// HasRates returns true if the user carries a default billing or cost rate
func (u *UserDefaults) HasRates() bool {
	return u.DefaultRate.Valid || u.DefaultCostRate.Valid
}

// RoleDefaults is a role's rack rate. Roles never carry a cost rate.
type RoleDefaults struct {
	ID              uuid.UUID
	Name            string
	DefaultRackRate decimal.NullDecimal
}

// HasRackRate returns true if the role carries a rack rate
func (r *RoleDefaults) HasRackRate() bool {
	return r.DefaultRackRate.Valid
}
