package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Resolution paths recorded on rate metrics.
const (
	RatePathSingle = "single"
	RatePathBatch  = "batch"
)

// RateMetrics records rate resolution outcomes.
type RateMetrics struct {
	resolutions   *Counter
	batchSize     *Histogram
	batchDuration *Histogram
}

// NewRateMetrics registers the rate resolution instruments on meter.
func NewRateMetrics(meter metric.Meter) (*RateMetrics, error) {
	resolutions, err := NewCounter(meter,
		"rate.resolutions",
		"Rates resolved, by precedence tier and path",
		"{resolution}",
	)
	if err != nil {
		return nil, err
	}

	batchSize, err := NewHistogram(meter, HistogramOpts{
		Name:        "rate.batch.size",
		Description: "Line items resolved per batch",
		Unit:        "{line_item}",
		Boundaries:  BatchSizeBuckets,
	})
	if err != nil {
		return nil, err
	}

	batchDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "rate.batch.duration",
		Description: "Time taken to resolve an estimate's line items",
		Unit:        "s",
		Boundaries:  SmallDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &RateMetrics{
		resolutions:   resolutions,
		batchSize:     batchSize,
		batchDuration: batchDuration,
	}, nil
}

// RecordResolution counts one resolution that ended in tier.
func (m *RateMetrics) RecordResolution(ctx context.Context, tier, path string) {
	if m == nil {
		return
	}
	m.resolutions.Inc(ctx, AttrRateTier.String(tier), AttrRatePath.String(path))
}

// RecordBatch records the size and duration of a batch resolution.
func (m *RateMetrics) RecordBatch(ctx context.Context, size int, d time.Duration) {
	if m == nil {
		return
	}
	m.batchSize.Record(ctx, float64(size))
	m.batchDuration.RecordDuration(ctx, d)
}
