// Package observability sets up OpenTelemetry metrics (exported through the
// Prometheus registry) and optional Jaeger tracing for the pipeline.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	serviceName    string
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	stepCounter    otelmetric.Int64Counter
	stepDuration   otelmetric.Float64Histogram
}

// New registers an OpenTelemetry meter provider backed by the Prometheus
// exporter. Tracing stays a no-op until EnableTracing is called.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	stepCounter, err := meter.Int64Counter(
		"pipeline.steps",
		otelmetric.WithDescription("Submission pipeline steps executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("create step counter: %w", err)
	}

	stepDuration, err := meter.Float64Histogram(
		"pipeline.step.duration",
		otelmetric.WithDescription("Submission pipeline step duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create step histogram: %w", err)
	}

	return &Observability{
		serviceName:   serviceName,
		meterProvider: provider,
		stepCounter:   stepCounter,
		stepDuration:  stepDuration,
	}, nil
}

// EnableTracing exports spans to a Jaeger collector endpoint.
func (o *Observability) EnableTracing(endpoint string) error {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return fmt.Errorf("create jaeger exporter: %w", err)
	}

	o.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", o.serviceName),
		)),
	)
	otel.SetTracerProvider(o.tracerProvider)
	return nil
}

// StartSpan starts a span on the global tracer. Safe on a nil receiver.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	service := "lead-router"
	if o != nil && o.serviceName != "" {
		service = o.serviceName
	}
	return otel.Tracer(service).Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordStep counts one pipeline step and its duration. Safe on a nil receiver.
func (o *Observability) RecordStep(ctx context.Context, step string, duration time.Duration, status string) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	)
	if o.stepCounter != nil {
		o.stepCounter.Add(ctx, 1, attrs)
	}
	if o.stepDuration != nil {
		o.stepDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var firstErr error
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
