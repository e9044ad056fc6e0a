package rate

import (
	"context"
	"errors"
	"time"

	"github.com/delivery/backend/internal/domain/rate"
	"github.com/delivery/backend/internal/domain/shared"
	"github.com/delivery/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resolver is the rate resolution engine consumed by RateService
type Resolver interface {
	Today() rate.Date
	Resolve(ctx context.Context, q rate.Query) (rate.EffectiveRate, error)
	ResolveBatch(ctx context.Context, estimateID uuid.UUID) ([]rate.BatchEntry, error)
	ListOverrides(ctx context.Context, estimateID uuid.UUID) ([]rate.OverrideSummary, error)
}

// RateService exposes rate resolution to the interface layer and owns the
// write-back of resolved rates onto line items
type RateService struct {
	resolver  Resolver
	lineItems rate.LineItemRepository
	metrics   *telemetry.RateMetrics
	logger    *zap.Logger
}

// NewRateService creates a new rate service. metrics may be nil.
func NewRateService(
	resolver Resolver,
	lineItems rate.LineItemRepository,
	metrics *telemetry.RateMetrics,
	logger *zap.Logger,
) *RateService {
	return &RateService{
		resolver:  resolver,
		lineItems: lineItems,
		metrics:   metrics,
		logger:    logger,
	}
}

// Resolve returns the effective rate for a single query
func (s *RateService) Resolve(ctx context.Context, req ResolveRequest) (*EffectiveRateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "rate", "resolve")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrEstimateID, req.EstimateID.String())
	if req.LineItemID != nil {
		telemetry.SetAttributes(span, telemetry.SpanAttrLineItemID, req.LineItemID.String())
	}

	result, err := s.resolver.Resolve(ctx, req.query())
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to resolve rate",
			zap.String("estimate_id", req.EstimateID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to resolve rate")
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrTier, result.Tier.String())
	s.metrics.RecordResolution(ctx, result.Tier.String(), telemetry.RatePathSingle)

	resp := ToEffectiveRateResponse(result)
	return &resp, nil
}

// ResolveEstimate resolves every line item of an estimate and summarizes the tiers used
func (s *RateService) ResolveEstimate(ctx context.Context, estimateID uuid.UUID) (*EstimateRatesResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "rate", "resolve_estimate")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrEstimateID, estimateID.String())

	entries, err := s.resolveBatch(ctx, estimateID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := &EstimateRatesResponse{
		EstimateID: estimateID,
		AsOf:       s.resolver.Today().String(),
		LineItems:  make([]LineItemRateResponse, 0, len(entries)),
		Summary:    newTierSummary(),
	}
	for _, e := range entries {
		resp.LineItems = append(resp.LineItems, LineItemRateResponse{
			LineItemID:            e.LineItemID,
			EffectiveRateResponse: ToEffectiveRateResponse(e.EffectiveRate),
		})
		resp.Summary[e.Tier.String()]++
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrLineItems, len(entries))
	return resp, nil
}

// RecalculateEstimate resolves every line item and persists the result onto the
// line items that are not manual overrides, in one transaction
func (s *RateService) RecalculateEstimate(ctx context.Context, estimateID uuid.UUID) (*RecalculateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "rate", "recalculate_estimate")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrEstimateID, estimateID.String())

	entries, err := s.resolveBatch(ctx, estimateID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := &RecalculateResponse{
		EstimateID: estimateID,
		Summary:    newTierSummary(),
	}
	updates := make([]rate.RateUpdate, 0, len(entries))
	for _, e := range entries {
		resp.Summary[e.Tier.String()]++
		if e.Tier == rate.TierManualOverride {
			resp.SkippedManual++
			continue
		}
		updates = append(updates, rate.RateUpdate{
			LineItemID: e.LineItemID,
			Rate:       e.Rate,
			CostRate:   e.CostRate,
		})
	}

	if err := s.lineItems.UpdateRates(ctx, updates); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to write back resolved rates",
			zap.String("estimate_id", estimateID.String()),
			zap.Int("line_items", len(updates)),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save resolved rates")
	}
	resp.Updated = len(updates)

	s.logger.Info("Recalculated estimate rates",
		zap.String("estimate_id", estimateID.String()),
		zap.Int("updated", resp.Updated),
		zap.Int("skipped_manual", resp.SkippedManual))
	return resp, nil
}

// ListOverrides returns the estimate's overrides with subject names
func (s *RateService) ListOverrides(ctx context.Context, estimateID uuid.UUID) ([]OverrideResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "rate", "list_overrides")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrEstimateID, estimateID.String())

	summaries, err := s.resolver.ListOverrides(ctx, estimateID)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to list rate overrides",
			zap.String("estimate_id", estimateID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list rate overrides")
	}

	overrides := make([]OverrideResponse, 0, len(summaries))
	for _, summary := range summaries {
		overrides = append(overrides, ToOverrideResponse(summary))
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOverrides, len(overrides))
	return overrides, nil
}

// resolveBatch runs the batch resolution and records its metrics.
// Domain errors pass through; anything else becomes INTERNAL_ERROR.
func (s *RateService) resolveBatch(ctx context.Context, estimateID uuid.UUID) ([]rate.BatchEntry, error) {
	start := time.Now()
	entries, err := s.resolver.ResolveBatch(ctx, estimateID)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			s.logger.Warn("Batch rate resolution rejected",
				zap.String("estimate_id", estimateID.String()),
				zap.String("code", domainErr.Code))
			return nil, domainErr
		}
		s.logger.Error("Failed to resolve estimate rates",
			zap.String("estimate_id", estimateID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to resolve estimate rates")
	}

	s.metrics.RecordBatch(ctx, len(entries), time.Since(start))
	for _, e := range entries {
		s.metrics.RecordResolution(ctx, e.Tier.String(), telemetry.RatePathBatch)
	}
	s.logger.Debug("Resolved estimate rates",
		zap.String("estimate_id", estimateID.String()),
		zap.Int("line_items", len(entries)))
	return entries, nil
}
