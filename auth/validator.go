package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ValidatorConfig configures the token validator.
type ValidatorConfig struct {
	// Issuer is the expected token issuer (iss claim). Required.
	Issuer string

	// Audience is the expected token audience (aud claim). Required.
	Audience string

	// Algorithms lists the accepted signing algorithms.
	// Default: HS256, HS384, HS512
	Algorithms []string

	// Leeway is the clock skew tolerated on exp, nbf and iat.
	// Default: 0
	Leeway time.Duration
}

// DefaultAlgorithms are the symmetric algorithms accepted when none are configured.
var DefaultAlgorithms = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// TokenValidator turns a raw bearer token into verified Claims.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: every rejection is a *ValidationError; no other error is returned.
// - Purity: Validate never mutates shared state or caches results.
type TokenValidator interface {
	Validate(ctx context.Context, rawToken string) (*Claims, error)
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithClock overrides the wall clock used for time-based checks.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// Validator validates HMAC-signed JWTs.
type Validator struct {
	config ValidatorConfig
	keys   KeyProvider
	now    func() time.Time
	parser *jwt.Parser
}

// NewValidator creates a new token validator.
func NewValidator(config ValidatorConfig, keys KeyProvider, opts ...ValidatorOption) (*Validator, error) {
	if strings.TrimSpace(config.Issuer) == "" {
		return nil, fmt.Errorf("%w: issuer is required", ErrInvalidValidatorConfig)
	}
	if strings.TrimSpace(config.Audience) == "" {
		return nil, fmt.Errorf("%w: audience is required", ErrInvalidValidatorConfig)
	}
	if keys == nil {
		return nil, fmt.Errorf("%w: key provider is required", ErrInvalidValidatorConfig)
	}
	if config.Leeway < 0 {
		return nil, fmt.Errorf("%w: leeway must not be negative", ErrInvalidValidatorConfig)
	}

	// Apply defaults
	if len(config.Algorithms) == 0 {
		config.Algorithms = DefaultAlgorithms
	}
	for _, alg := range config.Algorithms {
		if !strings.HasPrefix(alg, "HS") || jwt.GetSigningMethod(alg) == nil {
			return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidValidatorConfig, alg)
		}
	}
	config.Algorithms = append([]string(nil), config.Algorithms...)

	v := &Validator{
		config: config,
		keys:   keys,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.parser = jwt.NewParser(
		jwt.WithValidMethods(v.config.Algorithms),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(v.config.Issuer),
		jwt.WithAudience(v.config.Audience),
		jwt.WithLeeway(v.config.Leeway),
		jwt.WithTimeFunc(v.now),
	)

	return v, nil
}

// Validate parses rawToken and checks signature, expiry, issuer and audience.
// The checks run as one step: Claims are returned only if all of them pass.
func (v *Validator) Validate(ctx context.Context, rawToken string) (*Claims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, failure(FailureMalformed, nil)
	}

	var tc tokenClaims
	_, err := v.parser.ParseWithClaims(rawToken, &tc, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		key, err := v.keys.GetKey(ctx, kid)
		if err != nil {
			return nil, err
		}
		return key, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	// exp must be strictly in the future; the parser accepts exp == now.
	exp := tc.ExpiresAt.Time
	if !exp.After(v.now().Add(-v.config.Leeway)) {
		return nil, failure(FailureExpired, jwt.ErrTokenExpired)
	}

	claims := &Claims{
		subject:   tc.Subject,
		roles:     issuedRoles(tc.Roles),
		expiresAt: exp,
		issuer:    tc.Issuer,
		audience:  v.config.Audience,
		jwtID:     tc.ID,
	}
	if tc.IssuedAt != nil {
		claims.issuedAt = tc.IssuedAt.Time
	}
	return claims, nil
}

// classify maps parser errors onto failure kinds. A token can fail several
// claim checks at once; expiry wins over issuer/audience, which wins over
// missing claims.
func classify(err error) *ValidationError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return failure(FailureMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return failure(FailureInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return failure(FailureExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience):
		return failure(FailureInvalidIssuerOrAudience, err)
	default:
		return failure(FailureMalformed, err)
	}
}

// tokenClaims is the wire form of the claims contract.
type tokenClaims struct {
	jwt.RegisteredClaims
	Roles roleClaim `json:"roles,omitempty"`
}

// roleClaim accepts either a JSON array of strings or a single string.
type roleClaim []string

// UnmarshalJSON decodes the roles claim.
func (r *roleClaim) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*r = roleClaim{single}
		}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("roles claim: %w", err)
	}
	*r = list
	return nil
}

// issuedRoles copies the roles claim as issued. Trimming and
// deduplication belong to PrincipalBuilder.
func issuedRoles(roles roleClaim) []string {
	if len(roles) == 0 {
		return nil
	}
	return slices.Clone([]string(roles))
}

// Ensure Validator implements TokenValidator
var _ TokenValidator = (*Validator)(nil)
