package rate

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// SubjectType identifies what an estimate override targets
type SubjectType string

const (
	// SubjectTypePerson targets a single person assigned to line items
	SubjectTypePerson SubjectType = "person"
	// SubjectTypeRole targets every line item carrying the role
	SubjectTypeRole SubjectType = "role"
)

// IsValid checks if the subject type is valid
func (t SubjectType) IsValid() bool {
	switch t {
	case SubjectTypePerson, SubjectTypeRole:
		return true
	default:
		return false
	}
}

// String returns the string representation of the subject type
func (t SubjectType) String() string {
	return string(t)
}

// Scan implements the sql.Scanner interface
func (t *SubjectType) Scan(value any) error {
	if value == nil {
		return nil
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("rate: cannot scan type %T into SubjectType", value)
	}
	*t = SubjectType(strings.ToLower(s))
	if !t.IsValid() {
		return fmt.Errorf("rate: invalid subject type: %s", s)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (t SubjectType) Value() (driver.Value, error) {
	return string(t), nil
}

// Tier is the precedence level that produced an effective rate.
// Tiers are evaluated in the order they are declared; the first one that
// yields a result wins.
type Tier string

const (
	TierManualOverride   Tier = "manual_override"
	TierEstimateOverride Tier = "estimate_override"
	TierUserDefault      Tier = "user_default"
	TierRoleDefault      Tier = "role_default"
	TierNone             Tier = "none"
)

// AllTiers returns every tier in precedence order
func AllTiers() []Tier {
	return []Tier{
		TierManualOverride,
		TierEstimateOverride,
		TierUserDefault,
		TierRoleDefault,
		TierNone,
	}
}

// IsValid checks if the tier is valid
func (t Tier) IsValid() bool {
	switch t {
	case TierManualOverride, TierEstimateOverride, TierUserDefault, TierRoleDefault, TierNone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the tier
func (t Tier) String() string {
	return string(t)
}

// Rank returns the zero-based precedence position of the tier, or -1 if invalid
func (t Tier) Rank() int {
	for i, tier := range AllTiers() {
		if tier == t {
			return i
		}
	}
	return -1
}

// AppliesTo describes the line-item scope of an override
type AppliesTo string

const (
	AppliesToAll      AppliesTo = "all"
	AppliesToSpecific AppliesTo = "specific"
)
