package models

import (
	"testing"
	"time"

	"github.com/delivery/backend/internal/domain/rate"
	"github.com/delivery/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDList_Value(t *testing.T) {
	t.Run("empty list stored as empty array", func(t *testing.T) {
		v, err := UUIDList(nil).Value()
		require.NoError(t, err)
		assert.Equal(t, "[]", v)
	})

	t.Run("ids stored as JSON array", func(t *testing.T) {
		id := uuid.MustParse("6f1c2a8e-0d5b-4c39-9a47-3b1e7d2f5c10")
		v, err := UUIDList{id}.Value()
		require.NoError(t, err)
		assert.Equal(t, `["6f1c2a8e-0d5b-4c39-9a47-3b1e7d2f5c10"]`, v)
	})
}

func TestUUIDList_Scan(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	tests := []struct {
		name  string
		input any
		want  UUIDList
	}{
		{"nil", nil, nil},
		{"empty string", "", nil},
		{"empty array", "[]", nil},
		{"string", `["` + a.String() + `","` + b.String() + `"]`, UUIDList{a, b}},
		{"bytes", []byte(`["` + a.String() + `"]`), UUIDList{a}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got UUIDList
			require.NoError(t, got.Scan(tt.input))
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects malformed JSON", func(t *testing.T) {
		var got UUIDList
		assert.Error(t, got.Scan("not-json"))
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var got UUIDList
		assert.Error(t, got.Scan(42))
	})
}

func TestRateOverrideModel_RoundTrip(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	end := time.Date(2025, 3, 31, 23, 30, 0, 0, tokyo)
	lineItemID := uuid.New()

	override := rate.Override{
		BaseEntity:     shared.NewBaseEntity(),
		EstimateID:     uuid.New(),
		SubjectType:    rate.SubjectTypePerson,
		SubjectID:      uuid.New(),
		Rate:           decimal.NewNullDecimal(decimal.RequireFromString("180.00")),
		EffectiveStart: time.Date(2025, 1, 1, 8, 0, 0, 0, tokyo),
		EffectiveEnd:   &end,
		LineItemIDs:    []uuid.UUID{lineItemID},
	}

	var m RateOverrideModel
	m.FromDomain(override)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), m.EffectiveStart)
	require.NotNil(t, m.EffectiveEnd)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), *m.EffectiveEnd)

	got := m.ToDomain()
	assert.Equal(t, override.ID, got.ID)
	assert.Equal(t, override.SubjectType, got.SubjectType)
	assert.True(t, got.Rate.Decimal.Equal(decimal.RequireFromString("180")))
	assert.False(t, got.CostRate.Valid)
	assert.Equal(t, []uuid.UUID{lineItemID}, got.LineItemIDs)
	assert.True(t, got.ActiveOn(rate.Date{Year: 2025, Month: time.March, Day: 31}))
}

func TestLineItemModel_RoundTrip(t *testing.T) {
	personID := uuid.New()
	item := rate.LineItem{
		ID:             uuid.New(),
		EstimateID:     uuid.New(),
		PersonID:       &personID,
		Rate:           decimal.NewNullDecimal(decimal.NewFromInt(200)),
		ManualOverride: true,
		SortOrder:      3,
	}

	var m LineItemModel
	m.FromDomain(item)

	assert.Equal(t, item, m.ToDomain())
}
