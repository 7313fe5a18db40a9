package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/medrex/healthcare-ledger/pkg/types"
)

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled        bool
	Endpoint       string
	ServiceName    string
	ServiceVersion string
	SampleRate     float64
}

// TracingManager creates spans for chaincode transactions
type TracingManager struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// NewTracingManager creates a tracing manager. When tracing is disabled the
// provider records nothing outside the process.
func NewTracingManager(ctx context.Context, config TracingConfig) (*TracingManager, error) {
	if !config.Enabled {
		return NewTracingManagerWithProvider(sdktrace.NewTracerProvider(), config.ServiceName), nil
	}

	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(config.Endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return NewTracingManagerWithProvider(tp, config.ServiceName), nil
}

// NewTracingManagerWithProvider wraps an existing provider
func NewTracingManagerWithProvider(tp *sdktrace.TracerProvider, name string) *TracingManager {
	return &TracingManager{tracer: tp.Tracer(name), provider: tp}
}

// StartTransactionSpan starts a span for one chaincode transaction
func (tm *TracingManager) StartTransactionSpan(ctx context.Context, chaincode, function, txID string) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, fmt.Sprintf("blockchain.%s.%s", chaincode, function),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("blockchain.network", "hyperledger-fabric"),
			attribute.String("blockchain.chaincode", chaincode),
			attribute.String("blockchain.function", function),
			attribute.String("blockchain.tx_id", txID),
		),
	)
}

// EndSpan ends span, recording err and its ledger error code when set
func (tm *TracingManager) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("ledger.error_code", types.CodeOf(err)))
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Shutdown flushes and stops the provider
func (tm *TracingManager) Shutdown(ctx context.Context) error {
	return tm.provider.Shutdown(ctx)
}
