package rate

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is the rate-relevant view of a unit of estimated work
type LineItem struct {
	ID         uuid.UUID
	EstimateID uuid.UUID
	PersonID   *uuid.UUID
	RoleID     *uuid.UUID
	// Rate and CostRate are the values stored directly on the line item.
	// They are authoritative only when ManualOverride is set.
	Rate           decimal.NullDecimal
	CostRate       decimal.NullDecimal
	ManualOverride bool
	SortOrder      int
}

// HasPerson returns true if a person is assigned to the line item
func (li *LineItem) HasPerson() bool {
	return li.PersonID != nil && *li.PersonID != uuid.Nil
}

// HasRole returns true if a role is assigned to the line item
func (li *LineItem) HasRole() bool {
	return li.RoleID != nil && *li.RoleID != uuid.Nil
}

// Query builds the single-item resolution query that is equivalent to
// resolving this line item with its own assignments.
func (li *LineItem) Query() Query {
	id := li.ID
	return Query{
		EstimateID: li.EstimateID,
		LineItemID: &id,
		PersonID:   li.PersonID,
		RoleID:     li.RoleID,
	}
}
