package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for token validation and authorization.
var (
	// Token validation errors
	ErrTokenMalformed          = errors.New("auth: token malformed")
	ErrInvalidSignature        = errors.New("auth: invalid token signature")
	ErrTokenExpired            = errors.New("auth: token expired")
	ErrInvalidIssuerOrAudience = errors.New("auth: invalid token issuer or audience")
	ErrKeyNotFound             = errors.New("auth: verification key not found")
	ErrInvalidKey              = errors.New("auth: invalid verification key")
	ErrInvalidValidatorConfig  = errors.New("auth: invalid validator config")
	ErrInvalidRule             = errors.New("auth: invalid authorization rule")
	ErrMissingCredentials      = errors.New("auth: missing credentials")
	ErrEmptySubject            = errors.New("auth: token subject is empty")

	// Authorization errors
	ErrUnauthenticated = errors.New("auth: authentication required")
	ErrForbidden       = errors.New("auth: access denied")
)

// FailureKind classifies why a token was rejected.
type FailureKind int

const (
	FailureMalformed FailureKind = iota
	FailureInvalidSignature
	FailureExpired
	FailureInvalidIssuerOrAudience
)

// String returns the stable name used in logs and metric attributes.
func (k FailureKind) String() string {
	switch k {
	case FailureMalformed:
		return "malformed"
	case FailureInvalidSignature:
		return "invalid_signature"
	case FailureExpired:
		return "expired"
	case FailureInvalidIssuerOrAudience:
		return "invalid_issuer_or_audience"
	default:
		return "unknown"
	}
}

func (k FailureKind) sentinel() error {
	switch k {
	case FailureInvalidSignature:
		return ErrInvalidSignature
	case FailureExpired:
		return ErrTokenExpired
	case FailureInvalidIssuerOrAudience:
		return ErrInvalidIssuerOrAudience
	default:
		return ErrTokenMalformed
	}
}

// ValidationError is returned by the token validator for every rejected token.
type ValidationError struct {
	// Kind is the failure classification.
	Kind FailureKind

	// Cause is the underlying parser error, if any. It is meant for
	// diagnostics only and must never be shown to callers.
	Cause error
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if e.Cause == nil {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind.sentinel(), e.Cause)
}

// Unwrap returns the cause error for errors.Is/As support.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this failure kind.
func (e *ValidationError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func failure(kind FailureKind, cause error) *ValidationError {
	return &ValidationError{Kind: kind, Cause: cause}
}

// FailureKindOf extracts the failure kind from err.
// The boolean is false when err is not a validation error.
func FailureKindOf(err error) (FailureKind, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind, true
	}
	return 0, false
}

// DenyReason explains an authorization denial.
type DenyReason int

const (
	// DenyNone is the reason carried by an allowed decision.
	DenyNone DenyReason = iota
	// DenyUnauthenticated means no authenticated principal was present.
	DenyUnauthenticated
	// DenyForbidden means the principal lacks a required role.
	DenyForbidden
)

// String returns the reason name.
func (r DenyReason) String() string {
	switch r {
	case DenyNone:
		return "none"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// AuthzError represents an authorization failure.
type AuthzError struct {
	// Subject is the principal that was denied, empty for anonymous requests.
	Subject string

	// Method is the HTTP method of the denied request.
	Method string

	// Path is the request path that was denied.
	Path string

	// Reason is the denial classification.
	Reason DenyReason
}

// Error returns the error message.
func (e *AuthzError) Error() string {
	return fmt.Sprintf("authorization denied: subject=%q method=%q path=%q reason=%q",
		e.Subject, e.Method, e.Path, e.Reason)
}

// Is reports whether this error matches the target.
func (e *AuthzError) Is(target error) bool {
	switch e.Reason {
	case DenyUnauthenticated:
		return target == ErrUnauthenticated
	default:
		return target == ErrForbidden
	}
}
