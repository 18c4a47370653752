package location

import (
	"context"
	"github.com/ssherwood/locationservices/internal/config"
	"github.com/ssherwood/locationservices/internal/geo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"log/slog"
	"time"
)

const instrumentationName = "github.com/ssherwood/locationservices/internal/location"

// Instrument names recorded by Instrument.
const (
	RequestsMetric = "location.requests"
	DurationMetric = "location.duration"
)

const (
	ProviderKey  = attribute.Key("location.provider")
	OperationKey = attribute.Key("operation")
	OutcomeKey   = attribute.Key("outcome")
)

type instrumentOptions struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

type InstrumentOption func(*instrumentOptions)

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) InstrumentOption {
	return func(o *instrumentOptions) { o.tracerProvider = tp }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) InstrumentOption {
	return func(o *instrumentOptions) { o.meterProvider = mp }
}

type instrumented struct {
	next     Service
	provider string
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// Instrument wraps svc so every call runs in a span named location.<operation>
// and is counted in the location.requests counter and the location.duration
// histogram. name identifies the provider in span and metric attributes.
func Instrument(svc Service, name string, opts ...InstrumentOption) Service {
	o := instrumentOptions{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter(instrumentationName,
		metric.WithInstrumentationAttributes(ProviderKey.String(name)),
	)

	requests, err := meter.Int64Counter(RequestsMetric,
		metric.WithDescription("The number of location provider calls"),
		metric.WithUnit("{call}"))
	if err != nil {
		slog.Warn("Unable to create location.requests counter", config.ErrAttr(err))
	}

	duration, err := meter.Float64Histogram(DurationMetric,
		metric.WithDescription("The duration of location provider calls"),
		metric.WithUnit("ms"))
	if err != nil {
		slog.Warn("Unable to create location.duration histogram", config.ErrAttr(err))
	}

	return &instrumented{
		next:     svc,
		provider: name,
		tracer:   o.tracerProvider.Tracer(instrumentationName),
		requests: requests,
		duration: duration,
	}
}

func (s *instrumented) start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	attrs = append(attrs, ProviderKey.String(s.provider))
	ctx, span := s.tracer.Start(ctx, "location."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	started := time.Now()

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		measured := metric.WithAttributes(
			OperationKey.String(operation),
			ProviderKey.String(s.provider),
			OutcomeKey.String(outcome(err)),
		)
		if s.requests != nil {
			s.requests.Add(ctx, 1, measured)
		}
		if s.duration != nil {
			s.duration.Record(ctx, float64(time.Since(started).Microseconds())/1000, measured)
		}
	}
}

func (s *instrumented) Geocode(ctx context.Context, address geo.Address) (point geo.LatLng, err error) {
	ctx, end := s.start(ctx, "geocode", attribute.String("location.address", address.String()))
	defer func() { end(err) }()
	return s.next.Geocode(ctx, address)
}

func (s *instrumented) ReverseGeocode(ctx context.Context, point geo.LatLng) (address geo.Address, err error) {
	ctx, end := s.start(ctx, "reverse_geocode", attribute.String("location.point", point.String()))
	defer func() { end(err) }()
	return s.next.ReverseGeocode(ctx, point)
}

func (s *instrumented) GetDistance(ctx context.Context, from, to geo.LatLng) (meters int, err error) {
	ctx, end := s.start(ctx, "distance")
	defer func() { end(err) }()
	return s.next.GetDistance(ctx, from, to)
}

func (s *instrumented) GetRoute(ctx context.Context, from, to geo.LatLng) (points []geo.LatLng, err error) {
	ctx, end := s.start(ctx, "route")
	defer func() { end(err) }()
	return s.next.GetRoute(ctx, from, to)
}
