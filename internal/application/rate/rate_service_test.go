package rate

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/delivery/backend/internal/domain/rate"
	"github.com/delivery/backend/internal/domain/shared"
	"github.com/delivery/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type serviceFixture struct {
	service   *RateService
	resolver  *MockResolver
	lineItems *MockLineItemRepository
	reader    *sdkmetric.ManualReader
	logs      *observer.ObservedLogs
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := telemetry.NewRateMetrics(provider.Meter("test"))
	require.NoError(t, err)

	core, logs := observer.New(zap.DebugLevel)
	resolver := new(MockResolver)
	lineItems := new(MockLineItemRepository)

	return &serviceFixture{
		service:   NewRateService(resolver, lineItems, metrics, zap.New(core)),
		resolver:  resolver,
		lineItems: lineItems,
		reader:    reader,
		logs:      logs,
	}
}

// resolutionCounts returns the rate.resolutions counter keyed by "tier/path"
func (f *serviceFixture) resolutionCounts(t *testing.T) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if m.Name != "rate.resolutions" || !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				tier, _ := dp.Attributes.Value(attribute.Key("rate.tier"))
				path, _ := dp.Attributes.Value(attribute.Key("rate.path"))
				counts[tier.AsString()+"/"+path.AsString()] = dp.Value
			}
		}
	}
	return counts
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func requireDomainError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok, "expected *shared.DomainError, got %T", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestRateService_Resolve(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	estimateID := uuid.New()
	personID := uuid.New()
	overrideID := uuid.New()
	asOf := rate.Date{Year: 2025, Month: time.January, Day: 1}
	req := ResolveRequest{EstimateID: estimateID, PersonID: &personID, AsOf: &asOf}

	f.resolver.On("Resolve", mock.Anything, rate.Query{
		EstimateID: estimateID,
		PersonID:   &personID,
		AsOf:       &asOf,
	}).Return(rate.EffectiveRate{
		Rate:       amount("180"),
		Tier:       rate.TierEstimateOverride,
		Source:     "Estimate override for person",
		OverrideID: &overrideID,
		Chain:      []string{"estimate_override", "person:" + personID.String(), "override:" + overrideID.String()},
	}, nil)

	resp, err := f.service.Resolve(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "estimate_override", resp.Tier)
	assert.True(t, resp.Rate.Decimal.Equal(decimal.NewFromInt(180)))
	assert.False(t, resp.CostRate.Valid)
	assert.Equal(t, &overrideID, resp.OverrideID)
	assert.Len(t, resp.Chain, 3)
	assert.Equal(t, map[string]int64{"estimate_override/single": 1}, f.resolutionCounts(t))
	f.resolver.AssertExpectations(t)
}

func TestRateService_Resolve_NoneIsNotAnError(t *testing.T) {
	f := newServiceFixture(t)

	f.resolver.On("Resolve", mock.Anything, mock.AnythingOfType("rate.Query")).
		Return(rate.EffectiveRate{Tier: rate.TierNone, Source: rate.SourceNone}, nil)

	resp, err := f.service.Resolve(context.Background(), ResolveRequest{EstimateID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, "none", resp.Tier)
	assert.Equal(t, "No rates configured", resp.Source)
	assert.NotNil(t, resp.Chain)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rate":null,"cost_rate":null,"tier":"none","source":"No rates configured","chain":[]}`, string(body))
}

func TestRateService_Resolve_RepositoryFailure(t *testing.T) {
	f := newServiceFixture(t)

	f.resolver.On("Resolve", mock.Anything, mock.AnythingOfType("rate.Query")).
		Return(rate.EffectiveRate{}, assert.AnError)

	resp, err := f.service.Resolve(context.Background(), ResolveRequest{EstimateID: uuid.New()})
	assert.Nil(t, resp)
	requireDomainError(t, err, "INTERNAL_ERROR")
	assert.Equal(t, 1, f.logs.FilterMessage("Failed to resolve rate").Len())
	assert.Empty(t, f.resolutionCounts(t))
}

func batchFixture() (uuid.UUID, []rate.BatchEntry) {
	estimateID := uuid.New()
	return estimateID, []rate.BatchEntry{
		{LineItemID: uuid.New(), EffectiveRate: rate.EffectiveRate{Rate: amount("300"), Tier: rate.TierManualOverride}},
		{LineItemID: uuid.New(), EffectiveRate: rate.EffectiveRate{Rate: amount("180"), Tier: rate.TierEstimateOverride}},
		{LineItemID: uuid.New(), EffectiveRate: rate.EffectiveRate{Rate: amount("175"), CostRate: amount("95"), Tier: rate.TierUserDefault}},
		{LineItemID: uuid.New(), EffectiveRate: rate.EffectiveRate{Rate: amount("175"), CostRate: amount("95"), Tier: rate.TierUserDefault}},
		{LineItemID: uuid.New(), EffectiveRate: rate.EffectiveRate{Tier: rate.TierNone, Source: rate.SourceNone}},
	}
}

func TestRateService_ResolveEstimate(t *testing.T) {
	f := newServiceFixture(t)
	estimateID, entries := batchFixture()

	f.resolver.On("ResolveBatch", mock.Anything, estimateID).Return(entries, nil)
	f.resolver.On("Today").Return(rate.Date{Year: 2025, Month: time.March, Day: 15})

	resp, err := f.service.ResolveEstimate(context.Background(), estimateID)
	require.NoError(t, err)

	assert.Equal(t, estimateID, resp.EstimateID)
	assert.Equal(t, "2025-03-15", resp.AsOf)
	require.Len(t, resp.LineItems, len(entries))
	for i, item := range resp.LineItems {
		assert.Equal(t, entries[i].LineItemID, item.LineItemID)
		assert.Equal(t, entries[i].Tier.String(), item.Tier)
	}
	assert.Equal(t, TierSummary{
		"manual_override":   1,
		"estimate_override": 1,
		"user_default":      2,
		"role_default":      0,
		"none":              1,
	}, resp.Summary)
	assert.Equal(t, map[string]int64{
		"manual_override/batch":   1,
		"estimate_override/batch": 1,
		"user_default/batch":      2,
		"none/batch":              1,
	}, f.resolutionCounts(t))
}

func TestRateService_ResolveEstimate_Empty(t *testing.T) {
	f := newServiceFixture(t)
	estimateID := uuid.New()

	f.resolver.On("ResolveBatch", mock.Anything, estimateID).Return([]rate.BatchEntry{}, nil)
	f.resolver.On("Today").Return(rate.Date{Year: 2025, Month: time.March, Day: 15})

	resp, err := f.service.ResolveEstimate(context.Background(), estimateID)
	require.NoError(t, err)
	assert.NotNil(t, resp.LineItems)
	assert.Empty(t, resp.LineItems)
	assert.Len(t, resp.Summary, len(rate.AllTiers()))
}

func TestRateService_ResolveEstimate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"batch limit passes through", rate.ErrBatchTooLarge, "INVALID_INPUT"},
		{"repository failure becomes internal error", assert.AnError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			estimateID := uuid.New()
			f.resolver.On("ResolveBatch", mock.Anything, estimateID).Return(nil, tt.err)

			resp, err := f.service.ResolveEstimate(context.Background(), estimateID)
			assert.Nil(t, resp)
			requireDomainError(t, err, tt.wantCode)
		})
	}
}

func TestRateService_RecalculateEstimate(t *testing.T) {
	f := newServiceFixture(t)
	estimateID, entries := batchFixture()

	f.resolver.On("ResolveBatch", mock.Anything, estimateID).Return(entries, nil)

	var written []rate.RateUpdate
	f.lineItems.On("UpdateRates", mock.Anything, mock.AnythingOfType("[]rate.RateUpdate")).
		Run(func(args mock.Arguments) { written = args.Get(1).([]rate.RateUpdate) }).
		Return(nil)

	resp, err := f.service.RecalculateEstimate(context.Background(), estimateID)
	require.NoError(t, err)

	assert.Equal(t, 4, resp.Updated)
	assert.Equal(t, 1, resp.SkippedManual)
	assert.Equal(t, 2, resp.Summary["user_default"])

	require.Len(t, written, 4)
	for _, u := range written {
		assert.NotEqual(t, entries[0].LineItemID, u.LineItemID, "manual override must not be written")
	}
	assert.Equal(t, entries[1].LineItemID, written[0].LineItemID)
	assert.True(t, written[0].Rate.Decimal.Equal(decimal.NewFromInt(180)))
	assert.False(t, written[3].Rate.Valid)
	assert.False(t, written[3].CostRate.Valid)
	assert.Equal(t, 1, f.logs.FilterMessage("Recalculated estimate rates").Len())
}

func TestRateService_RecalculateEstimate_WriteFailure(t *testing.T) {
	f := newServiceFixture(t)
	estimateID, entries := batchFixture()

	f.resolver.On("ResolveBatch", mock.Anything, estimateID).Return(entries, nil)
	f.lineItems.On("UpdateRates", mock.Anything, mock.Anything).Return(assert.AnError)

	resp, err := f.service.RecalculateEstimate(context.Background(), estimateID)
	assert.Nil(t, resp)
	requireDomainError(t, err, "INTERNAL_ERROR")
}

func TestRateService_RecalculateEstimate_BatchFailureSkipsWrite(t *testing.T) {
	f := newServiceFixture(t)
	estimateID := uuid.New()

	f.resolver.On("ResolveBatch", mock.Anything, estimateID).Return(nil, assert.AnError)

	_, err := f.service.RecalculateEstimate(context.Background(), estimateID)
	requireDomainError(t, err, "INTERNAL_ERROR")
	f.lineItems.AssertNotCalled(t, "UpdateRates", mock.Anything, mock.Anything)
}

func TestRateService_ListOverrides(t *testing.T) {
	f := newServiceFixture(t)
	estimateID := uuid.New()
	lineItemID := uuid.New()
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	summaries := []rate.OverrideSummary{
		{
			Override: rate.Override{
				BaseEntity:     shared.NewBaseEntity(),
				EstimateID:     estimateID,
				SubjectType:    rate.SubjectTypePerson,
				SubjectID:      uuid.New(),
				Rate:           amount("180"),
				EffectiveStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				EffectiveEnd:   &end,
				LineItemIDs:    []uuid.UUID{lineItemID},
			},
			SubjectName: "Ada Lovelace",
			AppliesTo:   rate.AppliesToSpecific,
		},
		{
			Override: rate.Override{
				BaseEntity:     shared.NewBaseEntity(),
				EstimateID:     estimateID,
				SubjectType:    rate.SubjectTypeRole,
				SubjectID:      uuid.New(),
				CostRate:       amount("70"),
				EffectiveStart: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			},
			AppliesTo: rate.AppliesToAll,
		},
	}
	f.resolver.On("ListOverrides", mock.Anything, estimateID).Return(summaries, nil)

	overrides, err := f.service.ListOverrides(context.Background(), estimateID)
	require.NoError(t, err)
	require.Len(t, overrides, 2)

	assert.Equal(t, "Ada Lovelace", overrides[0].SubjectName)
	assert.Equal(t, "person", overrides[0].SubjectType)
	assert.Equal(t, "2025-01-01", overrides[0].EffectiveStart)
	require.NotNil(t, overrides[0].EffectiveEnd)
	assert.Equal(t, "2025-06-30", *overrides[0].EffectiveEnd)
	assert.Equal(t, "specific", overrides[0].AppliesTo)
	assert.Equal(t, []uuid.UUID{lineItemID}, overrides[0].LineItemIDs)

	assert.Equal(t, "", overrides[1].SubjectName)
	assert.Nil(t, overrides[1].EffectiveEnd)
	assert.Equal(t, "all", overrides[1].AppliesTo)
	assert.NotNil(t, overrides[1].LineItemIDs)
	assert.False(t, overrides[1].Rate.Valid)
}

func TestRateService_ListOverrides_Failure(t *testing.T) {
	f := newServiceFixture(t)
	estimateID := uuid.New()
	f.resolver.On("ListOverrides", mock.Anything, estimateID).Return(nil, assert.AnError)

	overrides, err := f.service.ListOverrides(context.Background(), estimateID)
	assert.Nil(t, overrides)
	requireDomainError(t, err, "INTERNAL_ERROR")
}

func TestRateService_NilMetrics(t *testing.T) {
	resolver := new(MockResolver)
	service := NewRateService(resolver, new(MockLineItemRepository), nil, zap.NewNop())

	resolver.On("Resolve", mock.Anything, mock.Anything).
		Return(rate.EffectiveRate{Tier: rate.TierNone, Source: rate.SourceNone}, nil)

	_, err := service.Resolve(context.Background(), ResolveRequest{EstimateID: uuid.New()})
	assert.NoError(t, err)
}
