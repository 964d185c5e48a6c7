package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bitvelocity/gatekeeper/observe"
)

// Gate establishes the request principal from a bearer token.
//
// The gate never rejects a request for missing or bad credentials. It only
// attaches a principal when the token verifies; whether the route needs
// one is decided later by Enforce.
//
// Contract:
// - Concurrency: a Gate is immutable and safe for concurrent use.
// - Context: the principal is attached to the request context only.
type Gate struct {
	validator TokenValidator
	opts      options
}

// NewGate creates a gate around validator.
func NewGate(validator TokenValidator, opts ...Option) (*Gate, error) {
	if validator == nil {
		return nil, fmt.Errorf("%w: validator is required", ErrInvalidValidatorConfig)
	}
	return &Gate{validator: validator, opts: newOptions(opts)}, nil
}

// Authenticate turns a raw header value into a principal.
//
// It returns ErrMissingCredentials when the header is empty or does not
// carry the expected scheme, a *ValidationError when the token is rejected,
// and ErrEmptySubject when a valid token names nobody.
func (g *Gate) Authenticate(ctx context.Context, headerValue string) (*Principal, error) {
	raw, ok := g.extract(headerValue)
	if !ok {
		return nil, ErrMissingCredentials
	}

	claims, err := g.validator.Validate(ctx, raw)
	if err != nil {
		return nil, err
	}

	p, ok := g.opts.builder.Build(claims)
	if !ok {
		return nil, ErrEmptySubject
	}
	return p, nil
}

func (g *Gate) extract(headerValue string) (string, bool) {
	if headerValue == "" {
		return "", false
	}
	if g.opts.prefix == "" {
		return headerValue, true
	}
	return strings.CutPrefix(headerValue, g.opts.prefix)
}

// Middleware runs CORS (when configured) and then authentication in front of next.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	h := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, g.authenticateRequest(r))
	}))
	if g.opts.cors != nil {
		h = g.opts.cors.Handler(h)
	}
	return h
}

// authenticateRequest returns r with a principal attached when the token
// verifies, or r unchanged otherwise.
func (g *Gate) authenticateRequest(r *http.Request) *http.Request {
	ctx := r.Context()
	if PrincipalFromContext(ctx).IsAuthenticated() {
		return r
	}

	p, err := g.Authenticate(ctx, r.Header.Get(g.opts.header))
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingCredentials):
		return r
	default:
		g.logFailure(ctx, r, err)
		return r
	}

	ctx, attached := WithPrincipal(ctx, p)
	if !attached {
		return r
	}
	return r.WithContext(ctx)
}

func (g *Gate) logFailure(ctx context.Context, r *http.Request, err error) {
	kind, ok := FailureKindOf(err)
	failure := "empty_subject"
	if ok {
		failure = kind.String()
	}
	g.opts.metrics.RecordTokenFailure(ctx, failure)
	g.opts.logger.Debug(ctx, "bearer token rejected",
		observe.F("failure", failure),
		observe.F("method", r.Method),
		observe.F("path", r.URL.Path),
	)
}
