package auth

import (
	"context"
)

// Context keys for auth-related values.
type contextKey int

const (
	principalKey contextKey = iota
)

// WithPrincipal attaches p to ctx. The slot is first-wins: if ctx already
// carries a principal, ctx is returned unchanged and the boolean is false.
// Nil and unauthenticated principals are never attached.
func WithPrincipal(ctx context.Context, p *Principal) (context.Context, bool) {
	if !p.IsAuthenticated() {
		return ctx, false
	}
	if PrincipalFromContext(ctx).IsAuthenticated() {
		return ctx, false
	}
	return context.WithValue(ctx, principalKey, p), true
}

// PrincipalFromContext retrieves the principal from the context.
// Returns nil if the request is anonymous.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

// UsernameFromContext retrieves the principal name from the context.
// Returns empty string if no principal is present.
func UsernameFromContext(ctx context.Context) string {
	return PrincipalFromContext(ctx).Username()
}
