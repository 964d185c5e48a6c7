package observe

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RouteFunc resolves the route template of a request after it was served.
type RouteFunc func(r *http.Request) string

// Middleware wraps HTTP handlers with tracing, metrics and access logging.
//
// Contract:
//   - Concurrency: Handler returns a handler safe for concurrent use.
//   - Context: the request context carries the server span downstream.
//   - Ownership: request and response bodies are passed through untouched.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
	route   RouteFunc
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// WithRouteFunc sets the resolver used to label spans and metrics with the
// route template instead of the raw path.
func (m *Middleware) WithRouteFunc(fn RouteFunc) *Middleware {
	m.route = fn
	return m
}

// Handler wraps next with request telemetry.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := RequestMeta{Method: r.Method, Path: r.URL.Path}
		ctx, span := m.tracer.StartSpan(r.Context(), meta)
		r = r.WithContext(ctx)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if m.route != nil {
			meta.Route = m.route(r)
		}

		m.tracer.EndSpan(span, meta, status)
		m.metrics.RecordRequest(ctx, meta, status, duration)

		fields := []Field{
			F("method", meta.Method),
			F("path", meta.Path),
			F("route", meta.Route),
			F("status", status),
			F("bytes", ww.BytesWritten()),
			F("duration_ms", float64(duration.Microseconds())/1000),
		}
		if id := middleware.GetReqID(ctx); id != "" {
			fields = append(fields, F("request_id", id))
		}

		if status >= http.StatusInternalServerError {
			m.logger.Error(ctx, "request failed", fields...)
		} else {
			m.logger.Info(ctx, "request completed", fields...)
		}
	})
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// AuthMetricsFromObserver creates auth metrics on the observer's meter.
func AuthMetricsFromObserver(obs Observer) (AuthMetrics, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return NewAuthMetrics(obs.Meter())
}
