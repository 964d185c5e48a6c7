// Package observe provides observability primitives for the HTTP service.
//
// It wraps OpenTelemetry tracing and metrics, a JSON structured logger that
// redacts credential fields, and an HTTP middleware that records one span,
// one set of request metrics and one access log entry per request. Auth
// components report token failures and policy decisions through AuthMetrics.
package observe
