package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInstruments_RecordOnTheMeter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	ctx := context.Background()

	in := NewInstruments(mp.Meter("test"))
	counter := in.Counter("test.counter", "a counter", "1")
	upDown := in.UpDownCounter("test.updown", "an up-down counter", "1")
	hist := in.Histogram("test.histogram", "a histogram", "s", PreparationBuckets)
	in.Gauge("test.gauge", "a gauge", "1", func() int64 { return 7 })
	require.NoError(t, in.Err())

	store := metric.WithAttributes(AttrStoreID.String("store-1"))
	counter.Add(ctx, 1, store)
	counter.Add(ctx, 4, store)
	upDown.Add(ctx, 3)
	upDown.Add(ctx, -2)
	hist.Record(ctx, 90)

	data := collectMetrics(t, reader)
	assert.Equal(t, int64(5), intSum(t, data, "test.counter"))
	assert.Equal(t, int64(1), intSum(t, data, "test.updown"))
	assert.Equal(t, int64(7), data["test.gauge"].(metricdata.Gauge[int64]).DataPoints[0].Value)

	h := data["test.histogram"].(metricdata.Histogram[float64])
	assert.Equal(t, PreparationBuckets, h.DataPoints[0].Bounds)
	assert.InDelta(t, 90, h.DataPoints[0].Sum, 0.001)
}

func TestInstruments_FirstErrorWins(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	in := NewInstruments(mp.Meter("test"))
	bad := in.Counter("1-not-a-name", "invalid", "1")
	later := in.FloatCounter("test.later", "declared after the failure", "1")

	require.Error(t, in.Err())
	assert.Contains(t, in.Err().Error(), "instrument 1-not-a-name")

	// Failed groups hand out no-op instruments that are safe to use.
	assert.NotPanics(t, func() {
		bad.Add(context.Background(), 1)
		later.Add(context.Background(), 1.5)
	})
	_, recorded := collectMetrics(t, reader)["test.later"]
	assert.False(t, recorded)
}
