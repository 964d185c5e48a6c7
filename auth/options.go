package auth

import (
	"github.com/bitvelocity/gatekeeper/observe"
)

// DefaultHeader and DefaultScheme locate the bearer token in a request.
const (
	DefaultHeader = "Authorization"
	DefaultScheme = "Bearer "
)

// Option configures the Gate and the Enforce middleware.
type Option func(*options)

type options struct {
	logger  observe.Logger
	metrics observe.AuthMetrics
	cors    *CORSPolicy
	builder PrincipalBuilder
	header  string
	prefix  string
}

func newOptions(opts []Option) options {
	o := options{
		logger:  observe.NopLogger(),
		metrics: observe.NopAuthMetrics(),
		header:  DefaultHeader,
		prefix:  DefaultScheme,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger for diagnostic entries.
func WithLogger(l observe.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithAuthMetrics sets the recorder for token failures and decisions.
func WithAuthMetrics(m observe.AuthMetrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithCORS makes the Gate apply p before authentication. Nil disables CORS.
func WithCORS(p *CORSPolicy) Option {
	return func(o *options) {
		o.cors = p
	}
}

// WithPrincipalBuilder sets how verified claims become a principal.
func WithPrincipalBuilder(b PrincipalBuilder) Option {
	return func(o *options) {
		o.builder = b
	}
}

// WithHeader changes where the token is read from.
// Default: Authorization header with the "Bearer " prefix
func WithHeader(name, prefix string) Option {
	return func(o *options) {
		if name != "" {
			o.header = name
		}
		o.prefix = prefix
	}
}
