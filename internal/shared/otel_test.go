package shared

import (
	"context"
	"github.com/ssherwood/locationservices/internal/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"testing"
)

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1.5).Description())

	ratio := sampler(0.25).Description()
	assert.Contains(t, ratio, "ParentBased")
	assert.Contains(t, ratio, "TraceIDRatioBased{0.25}")

	// a sampled parent keeps its children regardless of the ratio
	parent := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{1},
		TraceFlags: trace.FlagsSampled,
	})
	result := sampler(0).ShouldSample(sdktrace.SamplingParameters{
		ParentContext: trace.ContextWithSpanContext(context.Background(), parent),
		TraceID:       parent.TraceID(),
		Name:          "location.geocode",
	})
	assert.Equal(t, sdktrace.RecordAndSample, result.Decision)
}

func TestMeterProvider_LocationDurationBuckets(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := newMeterProvider(reader)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	histogram, err := mp.Meter("test").Float64Histogram(location.DurationMetric)
	require.NoError(t, err)
	histogram.Record(context.Background(), 42)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	data, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, data.DataPoints, 1)
	assert.Equal(t, providerLatencyBuckets, data.DataPoints[0].Bounds)
	assert.Equal(t, uint64(1), data.DataPoints[0].BucketCounts[4])

	// other histograms keep the SDK defaults
	other, err := mp.Meter("test").Float64Histogram("db.client.duration")
	require.NoError(t, err)
	other.Record(context.Background(), 1)
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name == "db.client.duration" {
			assert.NotEqual(t, providerLatencyBuckets, m.Data.(metricdata.Histogram[float64]).DataPoints[0].Bounds)
		}
	}
}
