package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func noWait(r *Retry) *Retry {
	r.wait = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return r
}

func TestNewRetry_Defaults(t *testing.T) {
	cfg := NewRetry(RetryConfig{}).Config()
	if cfg.MaxAttempts != 5 || cfg.InitialDelay != 200*time.Millisecond || cfg.MaxDelay != 5*time.Second || cfg.Multiplier != 2 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestRetry_Do(t *testing.T) {
	errDown := errors.New("connection refused")

	tests := []struct {
		name       string
		failures   int
		permanent  bool
		wantCalls  int
		wantErr    error
		wantRetErr bool
	}{
		{name: "first try", failures: 0, wantCalls: 1},
		{name: "recovers", failures: 2, wantCalls: 3},
		{name: "exhausted", failures: 10, wantCalls: 4, wantErr: ErrMaxRetriesExceeded, wantRetErr: true},
		{name: "permanent", failures: 10, permanent: true, wantCalls: 1, wantErr: errDown, wantRetErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := noWait(NewRetry(RetryConfig{MaxAttempts: 4}))
			calls := 0
			err := r.Do(context.Background(), func(context.Context) error {
				calls++
				if calls <= tt.failures {
					if tt.permanent {
						return Permanent(errDown)
					}
					return errDown
				}
				return nil
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantRetErr {
				t.Fatalf("Do() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Do() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantRetErr && !errors.Is(err, errDown) {
				t.Errorf("Do() error %v does not wrap the last failure", err)
			}
			if tt.permanent && IsPermanent(err) {
				t.Error("permanent marker should be stripped")
			}
		})
	}
}

func TestRetry_OnRetry(t *testing.T) {
	var attempts []int
	r := noWait(NewRetry(RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			attempts = append(attempts, attempt)
		},
	}))
	_ = r.Do(context.Background(), func(context.Context) error { return errors.New("x") })

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", attempts)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRetry(RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour})

	calls := 0
	err := r.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_Delay(t *testing.T) {
	r := NewRetry(RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second})

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{60, time.Second},
	}
	for _, tt := range tests {
		if got := r.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetry_DelayJitter(t *testing.T) {
	r := NewRetry(RetryConfig{InitialDelay: 100 * time.Millisecond, Jitter: true})
	for i := 0; i < 50; i++ {
		d := r.Delay(1)
		if d < 100*time.Millisecond || d >= 125*time.Millisecond {
			t.Fatalf("Delay(1) with jitter = %v, want [100ms, 125ms)", d)
		}
	}
}

func TestPermanent(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) must be nil")
	}
	base := errors.New("bad dsn")
	if err := Permanent(base); !IsPermanent(err) || !errors.Is(err, base) {
		t.Errorf("Permanent(base) = %v", err)
	}
}
