package rate

import (
	"context"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/delivery/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// memoryStore implements every repository over plain maps and counts calls
type memoryStore struct {
	lineItems map[uuid.UUID]LineItem
	overrides []Override
	users     map[uuid.UUID]UserDefaults
	roles     map[uuid.UUID]RoleDefaults

	lineItemCalls atomic.Int32
	overrideCalls atomic.Int32
	userCalls     atomic.Int32
	roleCalls     atomic.Int32
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		lineItems: make(map[uuid.UUID]LineItem),
		users:     make(map[uuid.UUID]UserDefaults),
		roles:     make(map[uuid.UUID]RoleDefaults),
	}
}

func (s *memoryStore) resolver(opts ...ResolverOption) *Resolver {
	return NewResolver(
		lineItemStore{s},
		overrideStore{s},
		userStore{s},
		roleStore{s},
		opts...,
	)
}

func (s *memoryStore) addLineItem(item LineItem) LineItem {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.lineItems[item.ID] = item
	return item
}

func (s *memoryStore) addOverride(o Override) Override {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	s.overrides = append(s.overrides, o)
	return o
}

func (s *memoryStore) resetCalls() {
	s.lineItemCalls.Store(0)
	s.overrideCalls.Store(0)
	s.userCalls.Store(0)
	s.roleCalls.Store(0)
}

type lineItemStore struct{ s *memoryStore }

func (r lineItemStore) FindByID(_ context.Context, id uuid.UUID) (*LineItem, error) {
	r.s.lineItemCalls.Add(1)
	item, ok := r.s.lineItems[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &item, nil
}

func (r lineItemStore) FindByEstimate(_ context.Context, estimateID uuid.UUID) ([]LineItem, error) {
	r.s.lineItemCalls.Add(1)
	var items []LineItem
	for _, item := range r.s.lineItems {
		if item.EstimateID == estimateID {
			items = append(items, item)
		}
	}
	slices.SortFunc(items, func(a, b LineItem) int { return a.SortOrder - b.SortOrder })
	return items, nil
}

func (r lineItemStore) UpdateRates(context.Context, []RateUpdate) error {
	return nil
}

type overrideStore struct{ s *memoryStore }

func (r overrideStore) FindByEstimate(_ context.Context, estimateID uuid.UUID) ([]Override, error) {
	r.s.overrideCalls.Add(1)
	var overrides []Override
	for _, o := range r.s.overrides {
		if o.EstimateID == estimateID {
			overrides = append(overrides, o)
		}
	}
	return overrides, nil
}

type userStore struct{ s *memoryStore }

func (r userStore) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]UserDefaults, error) {
	r.s.userCalls.Add(1)
	users := make(map[uuid.UUID]UserDefaults)
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			users[id] = u
		}
	}
	return users, nil
}

type roleStore struct{ s *memoryStore }

func (r roleStore) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]RoleDefaults, error) {
	r.s.roleCalls.Add(1)
	roles := make(map[uuid.UUID]RoleDefaults)
	for _, id := range ids {
		if role, ok := r.s.roles[id]; ok {
			roles[id] = role
		}
	}
	return roles, nil
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func calendarDay(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dateRef(s string) *Date {
	d := DateOf(calendarDay(s))
	return &d
}

func ref[T any](v T) *T {
	return &v
}

func fixedClock(s string) ResolverOption {
	return WithClock(func() time.Time { return calendarDay(s).Add(15 * time.Hour) })
}

func assertAmount(t *testing.T, want string, got decimal.NullDecimal) {
	t.Helper()
	if want == "" {
		assert.False(t, got.Valid, "expected null rate, got %s", got.Decimal)
		return
	}
	if assert.True(t, got.Valid, "expected rate %s, got null", want) {
		assert.True(t, got.Decimal.Equal(decimal.RequireFromString(want)), "expected rate %s, got %s", want, got.Decimal)
	}
}
