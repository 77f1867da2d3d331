// Package telemetry initializes OpenTelemetry metrics and tracing.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName    = "chart-publish"
	exportInterval = 10 * time.Second
)

// Settings selects whether telemetry is exported and how the run identifies
// itself.
type Settings struct {
	Enabled bool
	Version string // build version of the binary, e.g. "v1.4.0" or "dev"
	Command string // CLI command being run (tags, release, ci)
}

// Telemetry holds the OTel meter and tracer plus a shutdown function.
type Telemetry struct {
	Meter    metric.Meter
	Tracer   trace.Tracer
	Shutdown func(ctx context.Context) error
}

// New creates a Telemetry instance. Without Enabled the providers are noop.
// Otherwise the OTLP gRPC exporters read OTEL_EXPORTER_OTLP_ENDPOINT and the
// related variables from the environment.
func New(ctx context.Context, s Settings) (*Telemetry, error) {
	if !s.Enabled {
		return &Telemetry{
			Meter:    noopmetric.NewMeterProvider().Meter(serviceName),
			Tracer:   nooptrace.NewTracerProvider().Tracer(serviceName),
			Shutdown: func(context.Context) error { return nil },
		}, nil
	}

	res, err := newResource(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("building resource: %w", err)
	}

	tp, err := newTracerProvider(ctx, res)
	if err != nil {
		return nil, err
	}
	mp, err := newMeterProvider(ctx, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	// otelhttp in the registry and GitHub clients reads the global providers.
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return &Telemetry{
		Meter:  mp.Meter(serviceName),
		Tracer: tp.Tracer(serviceName),
		Shutdown: func(ctx context.Context) error {
			return errors.Join(mp.Shutdown(ctx), tp.Shutdown(ctx))
		},
	}, nil
}

func newResource(ctx context.Context, s Settings) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(serviceName)}
	if s.Version != "" {
		attrs = append(attrs, semconv.ServiceVersion(s.Version))
	}
	if s.Command != "" {
		attrs = append(attrs, attribute.String("chart_publish.command", s.Command))
	}
	return resource.New(ctx, resource.WithAttributes(attrs...))
}

func newTracerProvider(ctx context.Context, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exp, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exp, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	reader := sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(exportInterval))
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	), nil
}
