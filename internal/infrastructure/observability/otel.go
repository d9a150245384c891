package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/sinai-nexus/scheduling"

// Metrics holds all application metrics
type Metrics struct {
	AnswerCount          metric.Int64Counter
	AnswerDuration       metric.Float64Histogram
	ResolutionCount      metric.Int64Counter
	JournalMutationCount metric.Int64Counter
	CatalogReloadCount   metric.Int64Counter
}

// Setup initializes OpenTelemetry tracing, metrics and runtime instrumentation
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(15 * time.Second)); err != nil {
		GetLogger().Warn().Err(err).Msg("runtime instrumentation not started")
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			meterProvider.Shutdown(ctx),
			tracerProvider.Shutdown(ctx),
		)
	}

	return shutdown, nil
}

// InitMetrics initializes application metrics against the global meter provider
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	answerCount, err := meter.Int64Counter(
		"scheduling.answer.count",
		metric.WithDescription("Number of answered questions by intent and status"),
	)
	if err != nil {
		return nil, err
	}

	answerDuration, err := meter.Float64Histogram(
		"scheduling.answer.duration",
		metric.WithDescription("Time to resolve and answer a question in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	resolutionCount, err := meter.Int64Counter(
		"scheduling.resolution.count",
		metric.WithDescription("Entity resolution attempts by kind and outcome"),
	)
	if err != nil {
		return nil, err
	}

	journalMutationCount, err := meter.Int64Counter(
		"scheduling.journal.mutation.count",
		metric.WithDescription("Override journal mutations by operation"),
	)
	if err != nil {
		return nil, err
	}

	catalogReloadCount, err := meter.Int64Counter(
		"scheduling.catalog.reload.count",
		metric.WithDescription("Catalog snapshot loads by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		AnswerCount:          answerCount,
		AnswerDuration:       answerDuration,
		ResolutionCount:      resolutionCount,
		JournalMutationCount: journalMutationCount,
		CatalogReloadCount:   catalogReloadCount,
	}, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(instrumentationName)
	return tracer.Start(ctx, spanName)
}

// RecordError records an error in the current span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// RecordAnswer records a dispatched answer
func RecordAnswer(ctx context.Context, metrics *Metrics, intent, status string, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("status", status),
	)
	metrics.AnswerCount.Add(ctx, 1, attrs)
	metrics.AnswerDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordResolution records an exam or site resolution outcome
func RecordResolution(ctx context.Context, metrics *Metrics, kind string, matched bool) {
	if metrics == nil {
		return
	}
	metrics.ResolutionCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("matched", matched),
	))
}

// RecordJournalMutation records an override journal write
func RecordJournalMutation(ctx context.Context, metrics *Metrics, operation string, err error) {
	if metrics == nil {
		return
	}
	metrics.JournalMutationCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	))
}

// RecordCatalogReload records a catalog snapshot load
func RecordCatalogReload(ctx context.Context, metrics *Metrics, source string, err error) {
	if metrics == nil {
		return
	}
	metrics.CatalogReloadCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("success", err == nil),
	))
}
