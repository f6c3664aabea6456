// Package tracing provides OpenTelemetry-based distributed tracing infrastructure.
// It supports multiple exporters (stdout, OTLP) and provides domain-specific
// span helpers for queue drains, task pushes, pull cycles, and remote API calls.
package tracing

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// TracerName is the name used for the progsync tracer.
	TracerName = "github.com/fieldstack/progsync"

	// Version is the semantic version of the tracer.
	Version = "1.0.0"
)

// ExporterType defines the type of trace exporter.
type ExporterType string

const (
	ExporterNone   ExporterType = "none"
	ExporterStdout ExporterType = "stdout"
	ExporterOTLP   ExporterType = "otlp"
)

// Config holds tracing configuration.
type Config struct {
	Enabled      bool         // Whether tracing is enabled
	ExporterType ExporterType // Type of exporter to use
	OTLPEndpoint string       // OTLP collector endpoint (for OTLP exporter)
	ServiceName  string       // Service name for traces
	Environment  string       // Deployment environment (development, production)
	SampleRate   float64      // Sampling rate (0.0 to 1.0)
	Output       io.Writer    // Output for stdout exporter (defaults to os.Stdout)
}

// DefaultConfig returns sensible default tracing configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		ExporterType: ExporterNone,
		ServiceName:  "progsync",
		Environment:  "development",
		SampleRate:   1.0,
	}
}

// Tracer wraps an OpenTelemetry tracer with domain-specific functionality.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	config   Config
}

// global is the package-level default tracer.
var (
	global     *Tracer
	globalOnce sync.Once
)

// Init initializes the global tracer with the provided configuration.
func Init(ctx context.Context, cfg Config) (*Tracer, error) {
	var err error
	globalOnce.Do(func() {
		global, err = New(ctx, cfg)
	})
	return global, err
}

// Default returns the global tracer, or a no-op tracer if not initialized.
func Default() *Tracer {
	if global == nil {
		return &Tracer{
			tracer: otel.Tracer(TracerName),
			config: DefaultConfig(),
		}
	}
	return global
}

// New creates a new Tracer with the provided configuration.
func New(ctx context.Context, cfg Config) (*Tracer, error) {
	if !cfg.Enabled || cfg.ExporterType == ExporterNone {
		return &Tracer{
			tracer: noop.NewTracerProvider().Tracer(TracerName),
			config: cfg,
		}, nil
	}

	// Create exporter
	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	// Create resource without merging with Default() to avoid schema URL conflicts.
	// The default resource's schema URL may conflict with our semconv version.
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(Version),
			attribute.String("deployment.environment", cfg.Environment),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Create sampler
	var sampler sdktrace.Sampler
	if cfg.SampleRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else if cfg.SampleRate <= 0.0 {
		sampler = sdktrace.NeverSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	// Create tracer provider
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	// Set global propagator
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Set global tracer provider
	otel.SetTracerProvider(provider)

	return &Tracer{
		tracer:   provider.Tracer(TracerName, trace.WithInstrumentationVersion(Version)),
		provider: provider,
		config:   cfg,
	}, nil
}

// createExporter creates the appropriate exporter based on configuration.
func createExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.ExporterType {
	case ExporterStdout:
		opts := []stdouttrace.Option{
			stdouttrace.WithPrettyPrint(),
		}
		if cfg.Output != nil {
			opts = append(opts, stdouttrace.WithWriter(cfg.Output))
		}
		return stdouttrace.New(opts...)

	case ExporterOTLP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithInsecure(),
		}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
		}
		return otlptracehttp.New(ctx, opts...)

	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.ExporterType)
	}
}

// Shutdown gracefully shuts down the tracer provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider != nil {
		return t.provider.Shutdown(ctx)
	}
	return nil
}

// Start starts a new span with the given name.
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// SpanFromContext returns the current span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// --- Domain-specific span helpers ---

// DrainSpan represents a queue drain cycle span.
type DrainSpan struct {
	span trace.Span
	ctx  context.Context
}

// StartDrainSpan starts a span for a drain cycle over the outbox queue.
func (t *Tracer) StartDrainSpan(ctx context.Context, drainID string, batchSize int) (context.Context, *DrainSpan) {
	ctx, span := t.tracer.Start(ctx, "queue.drain",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("drain.id", drainID),
			attribute.Int("drain.batch_size", batchSize),
		),
	)

	return ctx, &DrainSpan{span: span, ctx: ctx}
}

// SetTaskCount sets the number of tasks claimed by the drain.
func (ds *DrainSpan) SetTaskCount(count int) {
	ds.span.SetAttributes(attribute.Int("drain.task_count", count))
}

// SetResults sets the per-outcome task counts for the drain.
func (ds *DrainSpan) SetResults(completed, failed int) {
	ds.span.SetAttributes(
		attribute.Int("drain.completed", completed),
		attribute.Int("drain.failed", failed),
	)
}

// End ends the drain span with success status.
func (ds *DrainSpan) End() {
	ds.span.SetStatus(codes.Ok, "drain completed")
	ds.span.End()
}

// EndWithError ends the drain span with error status.
func (ds *DrainSpan) EndWithError(err error) {
	ds.span.RecordError(err)
	ds.span.SetStatus(codes.Error, err.Error())
	ds.span.End()
}

// TaskSpan represents a single task push span.
type TaskSpan struct {
	span trace.Span
	ctx  context.Context
}

// StartTaskSpan starts a span for pushing one outbox task.
func (t *Tracer) StartTaskSpan(ctx context.Context, taskID, entityType, operation string) (context.Context, *TaskSpan) {
	ctx, span := t.tracer.Start(ctx, "task.push",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("task.id", taskID),
			attribute.String("task.entity_type", entityType),
			attribute.String("task.operation", operation),
		),
	)

	return ctx, &TaskSpan{span: span, ctx: ctx}
}

// SetEntityID sets the local entity identifier.
func (ts *TaskSpan) SetEntityID(id int64) {
	ts.span.SetAttributes(attribute.Int64("task.entity_id", id))
}

// SetRemoteID sets the remote identifier returned by the gateway.
func (ts *TaskSpan) SetRemoteID(remoteID string) {
	ts.span.SetAttributes(attribute.String("task.remote_id", remoteID))
}

// SetRetryCount sets the task's retry count at push time.
func (ts *TaskSpan) SetRetryCount(count int) {
	ts.span.SetAttributes(attribute.Int("task.retry_count", count))
}

// End ends the task span with success status.
func (ts *TaskSpan) End() {
	ts.span.SetStatus(codes.Ok, "task pushed")
	ts.span.End()
}

// EndWithError ends the task span with error status.
func (ts *TaskSpan) EndWithError(err error) {
	ts.span.RecordError(err)
	ts.span.SetStatus(codes.Error, err.Error())
	ts.span.End()
}

// PullSpan represents a mirror pull span.
type PullSpan struct {
	span trace.Span
	ctx  context.Context
}

// StartPullSpan starts a span for pulling one remote collection.
func (t *Tracer) StartPullSpan(ctx context.Context, collection, scopeID string) (context.Context, *PullSpan) {
	ctx, span := t.tracer.Start(ctx, "mirror.pull",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("pull.collection", collection),
			attribute.String("pull.scope_id", scopeID),
		),
	)

	return ctx, &PullSpan{span: span, ctx: ctx}
}

// SetRowCount sets the number of mirror rows upserted.
func (ps *PullSpan) SetRowCount(count int) {
	ps.span.SetAttributes(attribute.Int("pull.row_count", count))
}

// SetEmpty marks the pull as having found no remote collection.
func (ps *PullSpan) SetEmpty() {
	ps.span.SetAttributes(attribute.Bool("pull.empty", true))
}

// End ends the pull span with success status.
func (ps *PullSpan) End() {
	ps.span.SetStatus(codes.Ok, "pull completed")
	ps.span.End()
}

// EndWithError ends the pull span with error status.
func (ps *PullSpan) EndWithError(err error) {
	ps.span.RecordError(err)
	ps.span.SetStatus(codes.Error, err.Error())
	ps.span.End()
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span.
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
}

// SetAttribute sets an attribute on the current span.
func SetAttribute(ctx context.Context, key string, value any) {
	span := trace.SpanFromContext(ctx)
	switch v := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, v))
	case int:
		span.SetAttributes(attribute.Int(key, v))
	case int64:
		span.SetAttributes(attribute.Int64(key, v))
	case float64:
		span.SetAttributes(attribute.Float64(key, v))
	case bool:
		span.SetAttributes(attribute.Bool(key, v))
	}
}
