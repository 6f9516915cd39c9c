package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/hxstate/pkg/binding"
	"github.com/vango-dev/hxstate/pkg/dom"
)

// DefaultTracerName is the instrumentation name used by NewTracer.
const DefaultTracerName = "github.com/vango-dev/hxstate"

// Tracer wraps setup passes and live session messages in spans. Spans go to
// the global OpenTelemetry tracer provider; configure it before starting:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer named name, or DefaultTracerName when empty.
func NewTracer(name string) *Tracer {
	if name == "" {
		name = DefaultTracerName
	}
	return &Tracer{tracer: otel.Tracer(name)}
}

// Start opens a span.
func (t *Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records err on span and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Setup runs reg.Setup inside a span annotated with the result counts.
func (t *Tracer) Setup(ctx context.Context, reg *binding.Registrar, root *dom.Element) (*binding.Result, error) {
	ctx, span := t.Start(ctx, "hxstate.setup")
	res, err := reg.Setup(ctx, root)
	if res != nil {
		span.SetAttributes(
			attribute.Int("hxstate.stores", res.Stores),
			attribute.Int("hxstate.bindings", res.Bindings),
			attribute.Int("hxstate.effects", res.Effects),
			attribute.Int("hxstate.skipped", len(res.Skipped)),
		)
	}
	End(span, err)
	return res, err
}
