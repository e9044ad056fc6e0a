package rate

import (
	"slices"
	"time"

	"github.com/delivery/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Override is an estimate-scoped rule that supersedes default rates for a
// person or role, optionally bounded in time and limited to specific line items.
type Override struct {
	shared.BaseEntity
	EstimateID  uuid.UUID
	SubjectType SubjectType
	SubjectID   uuid.UUID
	Rate        decimal.NullDecimal
	CostRate    decimal.NullDecimal
	// EffectiveStart and EffectiveEnd are calendar dates; both bounds are inclusive.
	// A nil EffectiveEnd means the override never expires.
	EffectiveStart time.Time
	EffectiveEnd   *time.Time
	// LineItemIDs limits the override to the listed line items. Empty means every
	// line item of the subject.
	LineItemIDs []uuid.UUID
}

// HasRates returns true if the override carries a billing or cost rate.
// Overrides without either are inert.
func (o *Override) HasRates() bool {
	return o.Rate.Valid || o.CostRate.Valid
}

// ActiveOn reports whether the override's effective window contains the date
func (o *Override) ActiveOn(day Date) bool {
	if DateOf(o.EffectiveStart).After(day) {
		return false
	}
	if o.EffectiveEnd != nil && DateOf(*o.EffectiveEnd).Before(day) {
		return false
	}
	return true
}

// IsScoped returns true if the override is limited to specific line items
func (o *Override) IsScoped() bool {
	return len(o.LineItemIDs) > 0
}

// AppliesToLineItem reports whether the override's scope covers the line item.
// Unscoped overrides cover everything, including resolutions that name no line item.
// Scoped overrides only cover line items they list.
func (o *Override) AppliesToLineItem(lineItemID *uuid.UUID) bool {
	if !o.IsScoped() {
		return true
	}
	if lineItemID == nil {
		return false
	}
	return slices.Contains(o.LineItemIDs, *lineItemID)
}

// AppliesTo returns the derived scope flag shown to estimate authors
func (o *Override) AppliesTo() AppliesTo {
	if o.IsScoped() {
		return AppliesToSpecific
	}
	return AppliesToAll
}

// Targets reports whether the override is for the given subject
func (o *Override) Targets(subjectType SubjectType, subjectID uuid.UUID) bool {
	return o.SubjectType == subjectType && o.SubjectID == subjectID
}

// Matches applies the full matching predicate: subject, date window, line-item
// scope and the requirement that at least one rate is present.
func (o *Override) Matches(subjectType SubjectType, subjectID uuid.UUID, lineItemID *uuid.UUID, day Date) bool {
	return o.Targets(subjectType, subjectID) &&
		o.HasRates() &&
		o.ActiveOn(day) &&
		o.AppliesToLineItem(lineItemID)
}

// FindOverride returns the first override in the given order that matches the
// subject. More than one override may match; the earliest wins.
func FindOverride(overrides []Override, subjectType SubjectType, subjectID uuid.UUID, lineItemID *uuid.UUID, day Date) *Override {
	for i := range overrides {
		if overrides[i].Matches(subjectType, subjectID, lineItemID, day) {
			return &overrides[i]
		}
	}
	return nil
}

// OverrideSummary is an override enriched for display to estimate authors
type OverrideSummary struct {
	Override
	SubjectName string
	AppliesTo   AppliesTo
}
