package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kinesis-dev/kinesis/pkg/kinesis"

	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
)

// Default tracer name.
const defaultTracerName = "kinesis"

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "kinesis").
	TracerName string

	// Provider is the tracer provider (default: the global provider).
	Provider trace.TracerProvider

	// Context is the parent context of every span.
	Context context.Context
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(provider trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = provider
	}
}

// WithContext sets the parent context for spans, e.g. a per-session span.
func WithContext(ctx context.Context) TracerOption {
	return func(c *TracerConfig) {
		c.Context = ctx
	}
}

// Tracer is a kinesis.Observer that records a span per event, update pass
// and lifecycle transition. Observer calls arrive after the work is done,
// so spans are backdated by the reported elapsed time.
type Tracer struct {
	tracer trace.Tracer
	ctx    context.Context
}

// NewTracer returns a tracing observer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{
		TracerName: defaultTracerName,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	return &Tracer{
		tracer: config.Provider.Tracer(config.TracerName),
		ctx:    config.Context,
	}
}

func (t *Tracer) record(name string, elapsed time.Duration, attrs ...attribute.KeyValue) trace.Span {
	end := time.Now()
	_, span := t.tracer.Start(t.ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(end.Add(-elapsed)),
	)
	span.End(trace.WithTimestamp(end))
	return span
}

// EventHandled implements kinesis.Observer.
func (t *Tracer) EventHandled(component string, id kinesis.EventID, changed bool, elapsed time.Duration) {
	t.record("kinesis.event", elapsed,
		attribute.String("kinesis.component", component),
		attribute.Int("kinesis.event_id", int(id)),
		attribute.Bool("kinesis.changed", changed),
	)
}

// FragmentUpdated implements kinesis.Observer.
func (t *Tracer) FragmentUpdated(component string, changed []kinesis.DepID, parts int, elapsed time.Duration) {
	ids := make([]int64, len(changed))
	for i, id := range changed {
		ids[i] = int64(id)
	}
	t.record("kinesis.update", elapsed,
		attribute.String("kinesis.component", component),
		attribute.Int64Slice("kinesis.changed_ids", ids),
		attribute.Int("kinesis.parts", parts),
	)
}

// Mounted implements kinesis.Observer.
func (t *Tracer) Mounted(component string) {
	t.record("kinesis.mount", 0, attribute.String("kinesis.component", component))
}

// Detached implements kinesis.Observer.
func (t *Tracer) Detached(component string) {
	t.record("kinesis.detach", 0, attribute.String("kinesis.component", component))
}

// Failed implements kinesis.Observer.
func (t *Tracer) Failed(component, op string, err error) {
	_, span := t.tracer.Start(t.ctx, fmt.Sprintf("kinesis.%s", op),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("kinesis.component", component),
			attribute.String("kinesis.error_code", errorCode(err)),
		),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

func errorCode(err error) string {
	if code := kerrors.Code(err); code != "" {
		return code
	}
	return "unknown"
}
