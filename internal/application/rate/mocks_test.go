package rate

import (
	"context"

	"github.com/delivery/backend/internal/domain/rate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockResolver is a mock implementation of Resolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Today() rate.Date {
	args := m.Called()
	return args.Get(0).(rate.Date)
}

func (m *MockResolver) Resolve(ctx context.Context, q rate.Query) (rate.EffectiveRate, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(rate.EffectiveRate), args.Error(1)
}

func (m *MockResolver) ResolveBatch(ctx context.Context, estimateID uuid.UUID) ([]rate.BatchEntry, error) {
	args := m.Called(ctx, estimateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rate.BatchEntry), args.Error(1)
}

func (m *MockResolver) ListOverrides(ctx context.Context, estimateID uuid.UUID) ([]rate.OverrideSummary, error) {
	args := m.Called(ctx, estimateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rate.OverrideSummary), args.Error(1)
}

// MockLineItemRepository is a mock implementation of rate.LineItemRepository
type MockLineItemRepository struct {
	mock.Mock
}

func (m *MockLineItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*rate.LineItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rate.LineItem), args.Error(1)
}

func (m *MockLineItemRepository) FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]rate.LineItem, error) {
	args := m.Called(ctx, estimateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rate.LineItem), args.Error(1)
}

func (m *MockLineItemRepository) UpdateRates(ctx context.Context, updates []rate.RateUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}
