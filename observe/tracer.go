package observe

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// RequestMeta describes one HTTP request for telemetry purposes.
type RequestMeta struct {
	Method string // HTTP method (required)
	Route  string // Route template such as /api/products/{id} (optional)
	Path   string // Raw request path
}

// SpanName returns the span name for this request.
// Format: http.server <METHOD> <route> or http.server <METHOD>
func (m RequestMeta) SpanName() string {
	if m.Route != "" {
		return "http.server " + m.Method + " " + m.Route
	}
	return "http.server " + m.Method
}

// RouteOrPath returns the route template, falling back to the raw path.
func (m RequestMeta) RouteOrPath() string {
	if m.Route != "" {
		return m.Route
	}
	return m.Path
}

// Tracer wraps OpenTelemetry tracing with request span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a server span for the request.
	StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording the final route and status code.
	EndSpan(span trace.Span, meta RequestMeta, status int)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a span with request attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", meta.Method),
		attribute.String("url.path", meta.Path),
	}
	if meta.Route != "" {
		attrs = append(attrs, attribute.String("http.route", meta.Route))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// EndSpan ends the span. The route is usually known only after routing, so
// the span is renamed here when one is available. 5xx marks the span as
// failed; 4xx responses are client outcomes and leave the status unset.
func (t *tracerImpl) EndSpan(span trace.Span, meta RequestMeta, status int) {
	if meta.Route != "" {
		span.SetName(meta.SpanName())
		span.SetAttributes(attribute.String("http.route", meta.Route))
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a no-op tracer.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, meta RequestMeta, status int) {
	span.End()
}
