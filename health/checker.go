package health

import (
	"context"
	"fmt"
	"time"
)

// Status represents the health status of a component.
type Status int

const (
	// StatusHealthy indicates the component is functioning normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the component works but not as configured.
	StatusDegraded
	// StatusUnhealthy indicates the component cannot serve requests.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result contains the outcome of a health check.
type Result struct {
	Status    Status
	Message   string
	Details   map[string]any
	Duration  time.Duration
	Timestamp time.Time
	Error     error
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message, Timestamp: time.Now()}
}

// Degraded creates a degraded result.
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message, Timestamp: time.Now()}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Error: err, Timestamp: time.Now()}
}

// WithDetails adds details to a result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker is the interface for health checks.
type Checker interface {
	// Name returns the name of this checker.
	Name() string

	// Check performs the health check and returns the result.
	Check(ctx context.Context) Result
}

// CheckerFunc adapts an ordinary function to a named Checker.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc creates a new CheckerFunc.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

// Name returns the name of this checker.
func (f *CheckerFunc) Name() string { return f.name }

// Check performs the health check.
func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports a store unhealthy when its Ping fails.
type PingChecker struct {
	name   string
	pinger Pinger
}

// NewPingChecker wraps pinger as a named checker.
func NewPingChecker(name string, pinger Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: pinger}
}

// Name returns the checker name.
func (c *PingChecker) Name() string { return c.name }

// Check pings the store.
func (c *PingChecker) Check(ctx context.Context) Result {
	if err := c.pinger.Ping(ctx); err != nil {
		return Unhealthy("ping failed", fmt.Errorf("%w: %s: %w", ErrCheckFailed, c.name, err))
	}
	return Healthy("reachable")
}

// KeySource is the lookup half of a verification key provider.
type KeySource interface {
	GetKey(ctx context.Context, keyID string) ([]byte, error)
}

// KeyChecker confirms the verification key is loaded and long enough.
// The key bytes never appear in the result.
type KeyChecker struct {
	keys   KeySource
	minLen int
}

// NewKeyChecker creates a checker for the default (empty kid) key.
func NewKeyChecker(keys KeySource, minLen int) *KeyChecker {
	return &KeyChecker{keys: keys, minLen: minLen}
}

// Name returns "verification_key".
func (c *KeyChecker) Name() string { return "verification_key" }

// Check loads the key and reports its size.
func (c *KeyChecker) Check(ctx context.Context) Result {
	if c.keys == nil {
		return Unhealthy("no key provider", ErrCheckFailed)
	}
	key, err := c.keys.GetKey(ctx, "")
	if err != nil {
		return Unhealthy("key unavailable", fmt.Errorf("%w: %w", ErrCheckFailed, err))
	}
	details := map[string]any{"bits": len(key) * 8}
	if len(key) < c.minLen {
		return Unhealthy("key too short", ErrCheckFailed).WithDetails(details)
	}
	return Healthy("key loaded").WithDetails(details)
}

var (
	_ Checker = (*CheckerFunc)(nil)
	_ Checker = (*PingChecker)(nil)
	_ Checker = (*KeyChecker)(nil)
)
