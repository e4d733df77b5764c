package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeTransientError struct {
	msg       string
	transient bool
}

func (e *fakeTransientError) Error() string   { return e.msg }
func (e *fakeTransientError) Transient() bool { return e.transient }

func fastPolicy(maxRetries int) *Policy {
	p := NewPolicy(maxRetries, nil)
	p.BaseDelay = time.Millisecond
	p.MaxDelay = 5 * time.Millisecond
	return p
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), "op", func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), "op", func() error {
		calls++
		if calls < 3 {
			return &fakeTransientError{msg: "temporary outage", transient: true}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanent := &fakeTransientError{msg: "bad request", transient: false}
	calls := 0
	err := fastPolicy(3).Do(context.Background(), "op", func() error {
		calls++
		return permanent
	})
	if calls != 1 {
		t.Errorf("Expected 1 call for permanent error, got %d", calls)
	}
	if !errors.Is(err, permanent) {
		t.Errorf("Expected permanent error returned unchanged, got %v", err)
	}
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		t.Error("Expected permanent error not to be wrapped as exhaustion")
	}
}

func TestDoExhaustsRetryBudget(t *testing.T) {
	cause := &fakeTransientError{msg: "still down", transient: true}
	calls := 0
	err := fastPolicy(2).Do(context.Background(), "fetch", func() error {
		calls++
		return cause
	})
	if calls != 3 {
		t.Errorf("Expected 3 calls (1 + 2 retries), got %d", calls)
	}
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Expected *ExhaustedError, got %T: %v", err, err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("ExhaustedError.Attempts = %d, want 3", exhausted.Attempts)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected exhaustion to wrap the last cause")
	}
}

func TestDoZeroRetries(t *testing.T) {
	calls := 0
	err := fastPolicy(0).Do(context.Background(), "op", func() error {
		calls++
		return &fakeTransientError{msg: "down", transient: true}
	})
	if calls != 1 {
		t.Errorf("Expected exactly 1 call with zero retries, got %d", calls)
	}
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Expected *ExhaustedError, got %T", err)
	}
}

func TestDoHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fastPolicy(3).Do(ctx, "op", func() error {
		calls++
		return nil
	})
	if calls != 0 {
		t.Errorf("Expected no calls with cancelled context, got %d", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestDoStopsRetryingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := fastPolicy(10).Do(ctx, "op", func() error {
		calls++
		cancel()
		return &fakeTransientError{msg: "down", transient: true}
	})
	if calls != 1 {
		t.Errorf("Expected retries to stop after cancel, got %d calls", calls)
	}
	if err == nil {
		t.Fatal("Expected error after cancellation")
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "transient marker",
			err:  &fakeTransientError{msg: "timeout", transient: true},
			want: true,
		},
		{
			name: "permanent marker",
			err:  &fakeTransientError{msg: "not found", transient: false},
			want: false,
		},
		{
			name: "wrapped transient marker",
			err:  errors.Join(errors.New("outer"), &fakeTransientError{msg: "timeout", transient: true}),
			want: true,
		},
		{
			name: "context canceled",
			err:  context.Canceled,
			want: false,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("something broke"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	p := NewPolicy(5, nil)
	p.BaseDelay = time.Second
	p.MaxDelay = 4 * time.Second

	first := p.backoff(1)
	if first < time.Second || first > time.Second+250*time.Millisecond {
		t.Errorf("backoff(1) = %v, want 1s plus jitter", first)
	}

	capped := p.backoff(10)
	if capped < 4*time.Second || capped > 5*time.Second {
		t.Errorf("backoff(10) = %v, want capped at 4s plus jitter", capped)
	}
}
