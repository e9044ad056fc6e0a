package rate

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SourceNone is the fixed source description for the none tier
const SourceNone = "No rates configured"

// EffectiveRate is the result of a resolution. It is never persisted.
type EffectiveRate struct {
	Rate       decimal.NullDecimal
	CostRate   decimal.NullDecimal
	Tier       Tier
	Source     string
	OverrideID *uuid.UUID
	// Chain lists the tier followed by the subjects that produced the value,
	// e.g. ["estimate_override", "person:<id>", "override:<id>"].
	Chain []string
}

// IsNone returns true if no tier produced a rate
func (r EffectiveRate) IsNone() bool {
	return r.Tier == TierNone
}

// BatchEntry pairs a line item with its resolved rate
type BatchEntry struct {
	LineItemID uuid.UUID
	EffectiveRate
}

func chainStep(kind string, id uuid.UUID) string {
	return kind + ":" + id.String()
}

func manualRate(item *LineItem) EffectiveRate {
	return EffectiveRate{
		Rate:     item.Rate,
		CostRate: item.CostRate,
		Tier:     TierManualOverride,
		Source:   "Manual override on line item",
		Chain:    []string{TierManualOverride.String(), chainStep("line_item", item.ID)},
	}
}

func overrideRate(o *Override) EffectiveRate {
	id := o.ID
	return EffectiveRate{
		Rate:       o.Rate,
		CostRate:   o.CostRate,
		Tier:       TierEstimateOverride,
		Source:     fmt.Sprintf("Estimate override for %s", o.SubjectType),
		OverrideID: &id,
		Chain: []string{
			TierEstimateOverride.String(),
			chainStep(o.SubjectType.String(), o.SubjectID),
			chainStep("override", o.ID),
		},
	}
}

func userRate(u *UserDefaults) EffectiveRate {
	source := "User default rate"
	if u.DisplayName != "" {
		source = fmt.Sprintf("User default rate (%s)", u.DisplayName)
	}
	return EffectiveRate{
		Rate:     u.DefaultRate,
		CostRate: u.DefaultCostRate,
		Tier:     TierUserDefault,
		Source:   source,
		Chain:    []string{TierUserDefault.String(), chainStep("person", u.ID)},
	}
}

func roleRate(r *RoleDefaults) EffectiveRate {
	source := "Role rack rate"
	if r.Name != "" {
		source = fmt.Sprintf("Role rack rate (%s)", r.Name)
	}
	return EffectiveRate{
		Rate:   r.DefaultRackRate,
		Tier:   TierRoleDefault,
		Source: source,
		Chain:  []string{TierRoleDefault.String(), chainStep("role", r.ID)},
	}
}

func noneRate() EffectiveRate {
	return EffectiveRate{
		Tier:   TierNone,
		Source: SourceNone,
		Chain:  []string{TierNone.String()},
	}
}
