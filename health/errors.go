package health

import "errors"

var (
	// ErrCheckFailed wraps the cause of an unhealthy result.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is the result error of a check that outlived its timeout.
	ErrCheckTimeout = errors.New("health: check timed out")

	// ErrCheckerNotFound is returned for an unregistered checker name.
	ErrCheckerNotFound = errors.New("health: no such checker")
)
