package observe

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records HTTP request metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest records a served request with its status and duration.
	RecordRequest(ctx context.Context, meta RequestMeta, status int, duration time.Duration)
}

// AuthMetrics records authentication and authorization outcomes.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type AuthMetrics interface {
	// RecordTokenFailure counts a rejected bearer token by failure kind.
	RecordTokenFailure(ctx context.Context, failure string)

	// RecordAuthorization counts a policy decision.
	RecordAuthorization(ctx context.Context, outcome, reason string)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates request metrics on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Total number of served HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"http.server.errors",
		metric.WithDescription("Total number of HTTP requests answered with a 5xx status"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"http.server.duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// RecordRequest records metrics for a served request.
func (m *metricsImpl) RecordRequest(ctx context.Context, meta RequestMeta, status int, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("http.request.method", meta.Method),
		attribute.String("http.route", meta.RouteOrPath()),
		attribute.String("http.response.status_code", strconv.Itoa(status)),
	)

	m.totalCount.Add(ctx, 1, opt)
	if status >= http.StatusInternalServerError {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

// authMetricsImpl is the concrete implementation of AuthMetrics.
type authMetricsImpl struct {
	tokenFailures metric.Int64Counter
	decisions     metric.Int64Counter
}

// NewAuthMetrics creates auth metrics on the given meter.
func NewAuthMetrics(meter metric.Meter) (AuthMetrics, error) {
	tokenFailures, err := meter.Int64Counter(
		"auth.token.failures",
		metric.WithDescription("Bearer tokens rejected by the validator"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, err
	}

	decisions, err := meter.Int64Counter(
		"auth.decisions",
		metric.WithDescription("Authorization policy decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	return &authMetricsImpl{tokenFailures: tokenFailures, decisions: decisions}, nil
}

func (m *authMetricsImpl) RecordTokenFailure(ctx context.Context, failure string) {
	m.tokenFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("failure", failure)))
}

func (m *authMetricsImpl) RecordAuthorization(ctx context.Context, outcome, reason string) {
	m.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("reason", reason),
	))
}

// NopMetrics returns request metrics that record nothing.
func NopMetrics() Metrics {
	return &noopMetrics{}
}

// NopAuthMetrics returns auth metrics that record nothing.
func NopAuthMetrics() AuthMetrics {
	return &noopMetrics{}
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordRequest(ctx context.Context, meta RequestMeta, status int, duration time.Duration) {
}

func (m *noopMetrics) RecordTokenFailure(ctx context.Context, failure string) {}

func (m *noopMetrics) RecordAuthorization(ctx context.Context, outcome, reason string) {}
