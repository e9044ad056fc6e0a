package rate

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockLineItemRepository is a mock for LineItemRepository
type MockLineItemRepository struct {
	mock.Mock
}

func (m *MockLineItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*LineItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LineItem), args.Error(1)
}

func (m *MockLineItemRepository) FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]LineItem, error) {
	args := m.Called(ctx, estimateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]LineItem), args.Error(1)
}

func (m *MockLineItemRepository) UpdateRates(ctx context.Context, updates []RateUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

// MockOverrideRepository is a mock for OverrideRepository
type MockOverrideRepository struct {
	mock.Mock
}

func (m *MockOverrideRepository) FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]Override, error) {
	args := m.Called(ctx, estimateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Override), args.Error(1)
}

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]UserDefaults, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]UserDefaults), args.Error(1)
}

// MockRoleRepository is a mock for RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]RoleDefaults, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]RoleDefaults), args.Error(1)
}
