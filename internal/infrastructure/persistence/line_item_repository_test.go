package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/delivery/backend/internal/domain/rate"
	"github.com/delivery/backend/internal/domain/shared"
	"github.com/delivery/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func insertLineItem(t *testing.T, db *gorm.DB, item rate.LineItem) {
	t.Helper()
	var m models.LineItemModel
	m.FromDomain(item)
	require.NoError(t, db.Create(&m).Error)
}

func TestGormLineItemRepository_FindByID(t *testing.T) {
	db := setupRateTestDB(t)
	repo := NewGormLineItemRepository(db)
	ctx := context.Background()

	personID := uuid.New()
	item := rate.LineItem{
		ID:             uuid.New(),
		EstimateID:     uuid.New(),
		PersonID:       &personID,
		Rate:           money("210.50"),
		ManualOverride: true,
		SortOrder:      1,
	}
	insertLineItem(t, db, item)

	t.Run("returns the stored line item", func(t *testing.T) {
		got, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)

		assert.Equal(t, item.EstimateID, got.EstimateID)
		require.NotNil(t, got.PersonID)
		assert.Equal(t, personID, *got.PersonID)
		assert.Nil(t, got.RoleID)
		assert.True(t, got.ManualOverride)
		require.True(t, got.Rate.Valid)
		assert.True(t, got.Rate.Decimal.Equal(decimal.RequireFromString("210.50")))
		assert.False(t, got.CostRate.Valid)
	})

	t.Run("returns ErrNotFound for unknown ID", func(t *testing.T) {
		got, err := repo.FindByID(ctx, uuid.New())
		assert.Nil(t, got)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestGormLineItemRepository_FindByEstimate(t *testing.T) {
	db := setupRateTestDB(t)
	repo := NewGormLineItemRepository(db)
	ctx := context.Background()

	estimateID := uuid.New()
	third := rate.LineItem{ID: uuid.New(), EstimateID: estimateID, SortOrder: 3}
	first := rate.LineItem{ID: uuid.New(), EstimateID: estimateID, SortOrder: 1}
	second := rate.LineItem{ID: uuid.New(), EstimateID: estimateID, SortOrder: 2}
	other := rate.LineItem{ID: uuid.New(), EstimateID: uuid.New(), SortOrder: 0}

	for _, item := range []rate.LineItem{third, first, other, second} {
		insertLineItem(t, db, item)
	}

	t.Run("returns items of the estimate in sort order", func(t *testing.T) {
		items, err := repo.FindByEstimate(ctx, estimateID)
		require.NoError(t, err)
		require.Len(t, items, 3)

		assert.Equal(t, first.ID, items[0].ID)
		assert.Equal(t, second.ID, items[1].ID)
		assert.Equal(t, third.ID, items[2].ID)
	})

	t.Run("returns empty slice for unknown estimate", func(t *testing.T) {
		items, err := repo.FindByEstimate(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestGormLineItemRepository_UpdateRates(t *testing.T) {
	db := setupRateTestDB(t)
	repo := NewGormLineItemRepository(db)
	ctx := context.Background()

	estimateID := uuid.New()
	resolved := rate.LineItem{ID: uuid.New(), EstimateID: estimateID, SortOrder: 1}
	manual := rate.LineItem{
		ID:             uuid.New(),
		EstimateID:     estimateID,
		Rate:           money("300"),
		CostRate:       money("120"),
		ManualOverride: true,
		SortOrder:      2,
	}
	cleared := rate.LineItem{ID: uuid.New(), EstimateID: estimateID, Rate: money("99"), SortOrder: 3}
	for _, item := range []rate.LineItem{resolved, manual, cleared} {
		insertLineItem(t, db, item)
	}

	err := repo.UpdateRates(ctx, []rate.RateUpdate{
		{LineItemID: resolved.ID, Rate: money("175"), CostRate: money("95")},
		{LineItemID: manual.ID, Rate: money("1"), CostRate: money("1")},
		{LineItemID: cleared.ID},
	})
	require.NoError(t, err)

	t.Run("writes resolved rates", func(t *testing.T) {
		got, err := repo.FindByID(ctx, resolved.ID)
		require.NoError(t, err)
		assert.True(t, got.Rate.Decimal.Equal(decimal.NewFromInt(175)))
		assert.True(t, got.CostRate.Decimal.Equal(decimal.NewFromInt(95)))
	})

	t.Run("never touches manual overrides", func(t *testing.T) {
		got, err := repo.FindByID(ctx, manual.ID)
		require.NoError(t, err)
		assert.True(t, got.Rate.Decimal.Equal(decimal.NewFromInt(300)))
		assert.True(t, got.CostRate.Decimal.Equal(decimal.NewFromInt(120)))
	})

	t.Run("writes nulls when nothing resolved", func(t *testing.T) {
		got, err := repo.FindByID(ctx, cleared.ID)
		require.NoError(t, err)
		assert.False(t, got.Rate.Valid)
		assert.False(t, got.CostRate.Valid)
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.UpdateRates(ctx, nil))
	})
}

func TestGormLineItemRepository_UpdateRates_RollsBackOnError(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormLineItemRepository(db.DB)

	first := uuid.New()
	second := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "line_items" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "line_items" SET`)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.UpdateRates(context.Background(), []rate.RateUpdate{
		{LineItemID: first, Rate: money("150")},
		{LineItemID: second, Rate: money("160")},
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormLineItemRepository_UpdateRates_FiltersManualOverrides(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormLineItemRepository(db.DB)

	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "line_items" SET .+ WHERE id = \$4 AND manual_override = \$5`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateRates(context.Background(), []rate.RateUpdate{
		{LineItemID: id, Rate: money("150"), CostRate: money("80")},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
