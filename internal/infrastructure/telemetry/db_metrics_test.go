package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func collectByName(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRegisterDBMetrics_Disabled(t *testing.T) {
	db := openSQLite(t)
	provider := sdkmetric.NewMeterProvider()

	m, err := RegisterDBMetrics(db, provider.Meter("db.client"), DBMetricsConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Nil(t, db.Callback().Query().Get("db_metrics:after_query"))
	assert.NoError(t, m.Stop())
}

func TestRegisterDBMetrics_RecordsQueriesAndPool(t *testing.T) {
	db := openSQLite(t)
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := RegisterDBMetrics(db, provider.Meter("db.client"), DBMetricsConfig{Enabled: true}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, m)
	defer func() { assert.NoError(t, m.Stop()) }()

	require.NoError(t, db.Create(&tracedRow{ID: 1, Name: "a"}).Error)
	var rows []tracedRow
	require.NoError(t, db.Find(&rows).Error)

	metrics := collectByName(t, reader)

	total, ok := metrics["db_query_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	byOp := map[string]int64{}
	for _, dp := range total.DataPoints {
		op, _ := dp.Attributes.Value(AttrDBOperation)
		byOp[op.AsString()] = dp.Value
	}
	assert.Equal(t, int64(1), byOp["INSERT"])
	assert.Equal(t, int64(1), byOp["SELECT"])

	_, ok = metrics["db_query_duration_seconds"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)

	pool, ok := metrics["db_pool_connections"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Len(t, pool.DataPoints, 3)
	_, ok = metrics["db_pool_connections_max"]
	assert.True(t, ok)
}

func TestDBMetrics_SlowQuery(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	db := openSQLite(t)

	m, err := RegisterDBMetrics(db, provider.Meter("db.client"),
		DBMetricsConfig{Enabled: true, SlowQueryThreshold: time.Millisecond}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = m.Stop() }()

	m.RecordQuery(context.Background(), "select", "", 5*time.Millisecond)
	m.RecordQuery(context.Background(), "select", "line_items", 0)

	slow, ok := collectByName(t, reader)["db_slow_query_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, slow.DataPoints, 1)
	table, _ := slow.DataPoints[0].Attributes.Value(AttrDBTable)
	assert.Equal(t, "unknown", table.AsString())
	assert.Equal(t, int64(1), slow.DataPoints[0].Value)
}

func TestDetectOperationType(t *testing.T) {
	tests := map[string]string{
		"  select 1":               "SELECT",
		"INSERT INTO t VALUES (1)": "INSERT",
		"update t set a = 1":       "UPDATE",
		"DELETE FROM t":            "DELETE",
		"CREATE TABLE t (id int)":  "OTHER",
		"":                         "OTHER",
	}
	for sql, want := range tests {
		assert.Equal(t, want, detectOperationType(sql), sql)
	}
}
