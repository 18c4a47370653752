package shared

import (
	"context"
	"github.com/ssherwood/locationservices/internal/config"
	"github.com/ssherwood/locationservices/internal/location"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/sdk/metric"
	"google.golang.org/grpc/credentials"
	"log/slog"
)

func grpcMetricOptions() []otlpmetricgrpc.Option {
	options := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(config.OTELCollectorURL),
		otlpmetricgrpc.WithCompressor(config.OTELCompressor),
	}

	if config.OTELExporterInsecure {
		options = append(options, otlpmetricgrpc.WithInsecure())
	} else {
		options = append(options, otlpmetricgrpc.WithTLSCredentials(
			credentials.NewClientTLSFromCert(nil, ""),
		))
	}

	return options
}

// providerLatencyBuckets are the location.duration bucket bounds in ms.
var providerLatencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

func locationViews() []metric.View {
	return []metric.View{
		metric.NewView(
			metric.Instrument{Name: location.DurationMetric},
			metric.Stream{Aggregation: metric.AggregationExplicitBucketHistogram{
				Boundaries: providerLatencyBuckets,
			}},
		),
	}
}

func newMeterProvider(reader metric.Reader) *metric.MeterProvider {
	options := []metric.Option{
		metric.WithReader(reader),
		metric.WithResource(serviceResource()),
	}
	for _, view := range locationViews() {
		options = append(options, metric.WithView(view))
	}
	return metric.NewMeterProvider(options...)
}

// InitializeMetricProvider
// https://opentelemetry.io/docs/languages/go/instrumentation/#metrics
func InitializeMetricProvider(ctx context.Context) (*metric.MeterProvider, error) {
	metricExporter, err := otlpmetricgrpc.New(ctx, grpcMetricOptions()...)
	if err != nil {
		slog.Warn("Unable to initialize OTEL metric exporter", config.ErrAttr(err))
		return nil, err
	}

	meterProvider := newMeterProvider(
		metric.NewPeriodicReader(metricExporter, metric.WithInterval(config.OTELMeterInterval)),
	)

	// set the global meter provider
	otel.SetMeterProvider(meterProvider)

	return meterProvider, nil
}
