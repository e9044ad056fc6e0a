package rate

import (
	"context"
	"fmt"

	"github.com/delivery/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// rateSource supplies the records a resolution reads. A lookup that finds
// nothing returns nil with no error; any other failure is returned as-is.
type rateSource interface {
	lineItem(ctx context.Context, id uuid.UUID) (*LineItem, error)
	overrides(ctx context.Context) ([]Override, error)
	user(ctx context.Context, id uuid.UUID) (*UserDefaults, error)
	role(ctx context.Context, id uuid.UUID) (*RoleDefaults, error)
}

// repositorySource reads through to the repositories on demand.
// It lives for a single Resolve call.
type repositorySource struct {
	resolver   *Resolver
	estimateID uuid.UUID

	loaded []Override
	done   bool
}

func (s *repositorySource) lineItem(ctx context.Context, id uuid.UUID) (*LineItem, error) {
	item, err := s.resolver.lineItems.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("rate: load line item %s: %w", id, err)
	}
	return item, nil
}

func (s *repositorySource) overrides(ctx context.Context) ([]Override, error) {
	if s.done {
		return s.loaded, nil
	}
	overrides, err := s.resolver.overrides.FindByEstimate(ctx, s.estimateID)
	if err != nil {
		return nil, fmt.Errorf("rate: load overrides for estimate %s: %w", s.estimateID, err)
	}
	s.loaded, s.done = overrides, true
	return overrides, nil
}

func (s *repositorySource) user(ctx context.Context, id uuid.UUID) (*UserDefaults, error) {
	users, err := s.resolver.users.FindByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("rate: load user %s: %w", id, err)
	}
	if u, ok := users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *repositorySource) role(ctx context.Context, id uuid.UUID) (*RoleDefaults, error) {
	roles, err := s.resolver.roles.FindByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("rate: load role %s: %w", id, err)
	}
	if r, ok := roles[id]; ok {
		return &r, nil
	}
	return nil, nil
}

// preloadedSource answers from maps built once per batch and discarded with it
type preloadedSource struct {
	lineItems map[uuid.UUID]*LineItem
	loaded    []Override
	users     map[uuid.UUID]UserDefaults
	roles     map[uuid.UUID]RoleDefaults
}

func newPreloadedSource(items []LineItem, overrides []Override, users map[uuid.UUID]UserDefaults, roles map[uuid.UUID]RoleDefaults) *preloadedSource {
	byID := make(map[uuid.UUID]*LineItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	return &preloadedSource{
		lineItems: byID,
		loaded:    overrides,
		users:     users,
		roles:     roles,
	}
}

func (s *preloadedSource) lineItem(_ context.Context, id uuid.UUID) (*LineItem, error) {
	return s.lineItems[id], nil
}

func (s *preloadedSource) overrides(context.Context) ([]Override, error) {
	return s.loaded, nil
}

func (s *preloadedSource) user(_ context.Context, id uuid.UUID) (*UserDefaults, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *preloadedSource) role(_ context.Context, id uuid.UUID) (*RoleDefaults, error) {
	if r, ok := s.roles[id]; ok {
		return &r, nil
	}
	return nil, nil
}
