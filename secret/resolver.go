package secret

import (
	"context"
	"fmt"
	"strings"
)

// RefPrefix marks a value that must be resolved through a provider.
const RefPrefix = "secretref:"

// Resolver resolves secret references using registered providers.
//
// Values with the prefix "secretref:" are resolved via providers.
// Other values are returned after strict environment expansion.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver. A strict resolver rejects empty results.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{
		providers: make(map[string]Provider),
		strict:    strict,
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider.
func (r *Resolver) Register(provider Provider) {
	if provider == nil {
		return
	}
	r.providers[provider.Name()] = provider
}

// ResolveValue expands environment variables in value and resolves it when
// the result is a secret reference.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}

	out := expanded
	if strings.HasPrefix(expanded, RefPrefix) {
		providerName, ref, ok := ParseSecretRef(expanded)
		if !ok {
			return "", fmt.Errorf("%w: want %s<provider>:<ref>", ErrInvalidRef, RefPrefix)
		}
		provider, found := r.providers[providerName]
		if !found {
			return "", fmt.Errorf("%w: %q", ErrProviderNotFound, providerName)
		}
		if out, err = provider.Resolve(ctx, ref); err != nil {
			return "", err
		}
	}

	if r.strict && out == "" {
		return "", ErrEmptySecret
	}
	return out, nil
}

// ParseSecretRef parses a full secret reference of the form:
//
//	secretref:<provider>:<ref>
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, RefPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	provider = strings.TrimSpace(provider)
	if !found || provider == "" || strings.TrimSpace(ref) == "" {
		return "", "", false
	}
	return provider, ref, true
}
