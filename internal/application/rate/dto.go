package rate

import (
	"time"

	"github.com/delivery/backend/internal/domain/rate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ResolveRequest identifies the work to resolve a rate for
type ResolveRequest struct {
	EstimateID uuid.UUID
	LineItemID *uuid.UUID
	PersonID   *uuid.UUID
	RoleID     *uuid.UUID
	AsOf       *rate.Date
}

func (r ResolveRequest) query() rate.Query {
	return rate.Query{
		EstimateID: r.EstimateID,
		LineItemID: r.LineItemID,
		PersonID:   r.PersonID,
		RoleID:     r.RoleID,
		AsOf:       r.AsOf,
	}
}

// EffectiveRateResponse is a resolved rate in API responses.
// Rate and CostRate serialize as null when no tier supplied them.
type EffectiveRateResponse struct {
	Rate       decimal.NullDecimal `json:"rate"`
	CostRate   decimal.NullDecimal `json:"cost_rate"`
	Tier       string              `json:"tier"`
	Source     string              `json:"source"`
	OverrideID *uuid.UUID          `json:"override_id,omitempty"`
	Chain      []string            `json:"chain"`
}

// ToEffectiveRateResponse converts a domain EffectiveRate to DTO
func ToEffectiveRateResponse(r rate.EffectiveRate) EffectiveRateResponse {
	chain := r.Chain
	if chain == nil {
		chain = []string{}
	}
	return EffectiveRateResponse{
		Rate:       r.Rate,
		CostRate:   r.CostRate,
		Tier:       r.Tier.String(),
		Source:     r.Source,
		OverrideID: r.OverrideID,
		Chain:      chain,
	}
}

// LineItemRateResponse is the resolved rate of one line item
type LineItemRateResponse struct {
	LineItemID uuid.UUID `json:"line_item_id"`
	EffectiveRateResponse
}

// TierSummary counts line items per precedence tier. Every tier is present.
type TierSummary map[string]int

func newTierSummary() TierSummary {
	summary := make(TierSummary, len(rate.AllTiers()))
	for _, tier := range rate.AllTiers() {
		summary[tier.String()] = 0
	}
	return summary
}

// EstimateRatesResponse holds the resolved rates of every line item in an estimate
type EstimateRatesResponse struct {
	EstimateID uuid.UUID              `json:"estimate_id"`
	AsOf       string                 `json:"as_of"`
	LineItems  []LineItemRateResponse `json:"line_items"`
	Summary    TierSummary            `json:"summary"`
}

// RecalculateResponse reports the outcome of writing resolved rates back onto line items
type RecalculateResponse struct {
	EstimateID    uuid.UUID   `json:"estimate_id"`
	Updated       int         `json:"updated"`
	SkippedManual int         `json:"skipped_manual"`
	Summary       TierSummary `json:"summary"`
}

// OverrideResponse represents an estimate rate override in API responses
type OverrideResponse struct {
	ID             uuid.UUID           `json:"id"`
	EstimateID     uuid.UUID           `json:"estimate_id"`
	SubjectType    string              `json:"subject_type"`
	SubjectID      uuid.UUID           `json:"subject_id"`
	SubjectName    string              `json:"subject_name"`
	Rate           decimal.NullDecimal `json:"rate"`
	CostRate       decimal.NullDecimal `json:"cost_rate"`
	EffectiveStart string              `json:"effective_start"`
	EffectiveEnd   *string             `json:"effective_end"`
	AppliesTo      string              `json:"applies_to"`
	LineItemIDs    []uuid.UUID         `json:"line_item_ids"`
	CreatedAt      time.Time           `json:"created_at"`
}

// ToOverrideResponse converts a domain OverrideSummary to DTO
func ToOverrideResponse(s rate.OverrideSummary) OverrideResponse {
	resp := OverrideResponse{
		ID:             s.ID,
		EstimateID:     s.EstimateID,
		SubjectType:    s.SubjectType.String(),
		SubjectID:      s.SubjectID,
		SubjectName:    s.SubjectName,
		Rate:           s.Rate,
		CostRate:       s.CostRate,
		EffectiveStart: rate.DateOf(s.EffectiveStart).String(),
		AppliesTo:      string(s.AppliesTo),
		LineItemIDs:    s.LineItemIDs,
		CreatedAt:      s.CreatedAt,
	}
	if s.EffectiveEnd != nil {
		end := rate.DateOf(*s.EffectiveEnd).String()
		resp.EffectiveEnd = &end
	}
	if resp.LineItemIDs == nil {
		resp.LineItemIDs = []uuid.UUID{}
	}
	return resp
}
