package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/delivery/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrBatchTooLarge is returned when an estimate has more line items than the
// resolver is configured to resolve in one batch
var ErrBatchTooLarge = shared.NewDomainError("INVALID_INPUT", "Estimate has too many line items for batch resolution")

// Query identifies what to resolve a rate for. Only EstimateID is required.
type Query struct {
	EstimateID uuid.UUID
	LineItemID *uuid.UUID
	PersonID   *uuid.UUID
	RoleID     *uuid.UUID
	// AsOf is the calendar date to resolve for. Nil means today in the
	// resolver's location.
	AsOf *Date
}

// Resolver determines the billing and cost rate that applies to estimated work.
// It walks the precedence tiers in order and returns the first one that
// produces a result:
// 1. Manual override stored on the line item
// 2. Estimate override (person before role)
// 3. User default rate
// 4. Role rack rate
// 5. None
//
// A Resolver holds no mutable state and is safe for concurrent use.
type Resolver struct {
	lineItems LineItemRepository
	overrides OverrideRepository
	users     UserRepository
	roles     RoleRepository

	location     *time.Location
	now          func() time.Time
	maxBatchSize int
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithLocation sets the time zone used to determine today's date
func WithLocation(loc *time.Location) ResolverOption {
	return func(r *Resolver) {
		if loc != nil {
			r.location = loc
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithBatchLimit caps the number of line items ResolveBatch accepts. Zero disables the cap.
func WithBatchLimit(n int) ResolverOption {
	return func(r *Resolver) {
		r.maxBatchSize = n
	}
}

// NewResolver creates a new rate resolver
func NewResolver(
	lineItems LineItemRepository,
	overrides OverrideRepository,
	users UserRepository,
	roles RoleRepository,
	opts ...ResolverOption,
) *Resolver {
	r := &Resolver{
		lineItems: lineItems,
		overrides: overrides,
		users:     users,
		roles:     roles,
		location:  time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Today returns the current calendar date in the resolver's location
func (r *Resolver) Today() Date {
	return DateIn(r.now(), r.location)
}

// Resolve returns the effective rate for a single query.
// A result in the none tier is a valid outcome, not an error; errors are only
// returned when a repository fails.
func (r *Resolver) Resolve(ctx context.Context, q Query) (EffectiveRate, error) {
	day := r.Today()
	if q.AsOf != nil {
		day = *q.AsOf
	}
	src := &repositorySource{resolver: r, estimateID: q.EstimateID}
	return r.resolve(ctx, src, q, day)
}

// ResolveBatch resolves every line item of the estimate as of today.
// Line items and overrides are loaded once, then users and roles are loaded for
// the distinct IDs the line items reference. Each entry is identical to calling
// Resolve with the line item's own person and role.
func (r *Resolver) ResolveBatch(ctx context.Context, estimateID uuid.UUID) ([]BatchEntry, error) {
	day := r.Today()

	var (
		items     []LineItem
		overrides []Override
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = r.lineItems.FindByEstimate(gctx, estimateID)
		if err != nil {
			return fmt.Errorf("rate: load line items for estimate %s: %w", estimateID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		overrides, err = r.overrides.FindByEstimate(gctx, estimateID)
		if err != nil {
			return fmt.Errorf("rate: load overrides for estimate %s: %w", estimateID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if r.maxBatchSize > 0 && len(items) > r.maxBatchSize {
		return nil, ErrBatchTooLarge
	}

	personIDs, roleIDs := collectAssignees(items)

	var (
		users map[uuid.UUID]UserDefaults
		roles map[uuid.UUID]RoleDefaults
	)
	g, gctx = errgroup.WithContext(ctx)
	if len(personIDs) > 0 {
		g.Go(func() error {
			var err error
			users, err = r.users.FindByIDs(gctx, personIDs)
			if err != nil {
				return fmt.Errorf("rate: load users for estimate %s: %w", estimateID, err)
			}
			return nil
		})
	}
	if len(roleIDs) > 0 {
		g.Go(func() error {
			var err error
			roles, err = r.roles.FindByIDs(gctx, roleIDs)
			if err != nil {
				return fmt.Errorf("rate: load roles for estimate %s: %w", estimateID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	src := newPreloadedSource(items, overrides, users, roles)
	entries := make([]BatchEntry, 0, len(items))
	for i := range items {
		q := items[i].Query()
		effective, err := r.resolve(ctx, src, q, day)
		if err != nil {
			return nil, err
		}
		entries = append(entries, BatchEntry{LineItemID: items[i].ID, EffectiveRate: effective})
	}
	return entries, nil
}

// ListOverrides returns the estimate's overrides with their subject's display
// name and derived scope. Names are looked up one override at a time; a subject
// that no longer exists yields an empty name.
func (r *Resolver) ListOverrides(ctx context.Context, estimateID uuid.UUID) ([]OverrideSummary, error) {
	overrides, err := r.overrides.FindByEstimate(ctx, estimateID)
	if err != nil {
		return nil, fmt.Errorf("rate: load overrides for estimate %s: %w", estimateID, err)
	}

	summaries := make([]OverrideSummary, 0, len(overrides))
	for _, o := range overrides {
		name, err := r.subjectName(ctx, &o)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, OverrideSummary{
			Override:    o,
			SubjectName: name,
			AppliesTo:   o.AppliesTo(),
		})
	}
	return summaries, nil
}

func (r *Resolver) subjectName(ctx context.Context, o *Override) (string, error) {
	ids := []uuid.UUID{o.SubjectID}
	switch o.SubjectType {
	case SubjectTypePerson:
		users, err := r.users.FindByIDs(ctx, ids)
		if err != nil {
			return "", fmt.Errorf("rate: load user %s: %w", o.SubjectID, err)
		}
		return users[o.SubjectID].DisplayName, nil
	case SubjectTypeRole:
		roles, err := r.roles.FindByIDs(ctx, ids)
		if err != nil {
			return "", fmt.Errorf("rate: load role %s: %w", o.SubjectID, err)
		}
		return roles[o.SubjectID].Name, nil
	default:
		return "", nil
	}
}

// resolve walks the tiers against src. Both the single and batch paths go
// through here so their results cannot diverge.
func (r *Resolver) resolve(ctx context.Context, src rateSource, q Query, day Date) (EffectiveRate, error) {
	if present(q.LineItemID) {
		item, err := src.lineItem(ctx, *q.LineItemID)
		if err != nil {
			return EffectiveRate{}, err
		}
		if item != nil && item.EstimateID == q.EstimateID && item.ManualOverride {
			return manualRate(item), nil
		}
	}

	if present(q.PersonID) || present(q.RoleID) {
		overrides, err := src.overrides(ctx)
		if err != nil {
			return EffectiveRate{}, err
		}
		if o := matchOverride(overrides, q, day); o != nil {
			return overrideRate(o), nil
		}
	}

	if present(q.PersonID) {
		u, err := src.user(ctx, *q.PersonID)
		if err != nil {
			return EffectiveRate{}, err
		}
		if u != nil && u.HasRates() {
			return userRate(u), nil
		}
	}

	if present(q.RoleID) {
		role, err := src.role(ctx, *q.RoleID)
		if err != nil {
			return EffectiveRate{}, err
		}
		if role != nil && role.HasRackRate() {
			return roleRate(role), nil
		}
	}

	return noneRate(), nil
}

// matchOverride prefers a person override to a role override
func matchOverride(overrides []Override, q Query, day Date) *Override {
	if present(q.PersonID) {
		if o := FindOverride(overrides, SubjectTypePerson, *q.PersonID, q.LineItemID, day); o != nil {
			return o
		}
	}
	if present(q.RoleID) {
		if o := FindOverride(overrides, SubjectTypeRole, *q.RoleID, q.LineItemID, day); o != nil {
			return o
		}
	}
	return nil
}

func collectAssignees(items []LineItem) (personIDs, roleIDs []uuid.UUID) {
	seenPeople := make(map[uuid.UUID]struct{})
	seenRoles := make(map[uuid.UUID]struct{})
	for i := range items {
		if items[i].HasPerson() {
			id := *items[i].PersonID
			if _, ok := seenPeople[id]; !ok {
				seenPeople[id] = struct{}{}
				personIDs = append(personIDs, id)
			}
		}
		if items[i].HasRole() {
			id := *items[i].RoleID
			if _, ok := seenRoles[id]; !ok {
				seenRoles[id] = struct{}{}
				roleIDs = append(roleIDs, id)
			}
		}
	}
	return personIDs, roleIDs
}

func present(id *uuid.UUID) bool {
	return id != nil && *id != uuid.Nil
}
