// Package resilience retries start-up operations against external stores.
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  5,
//	    InitialDelay: 200 * time.Millisecond,
//	    Jitter:       true,
//	})
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//	    return db.PingContext(ctx)
//	})
//
// Wrap an error with Permanent to stop retrying at once, for example when a
// DSN cannot be parsed.
package resilience
