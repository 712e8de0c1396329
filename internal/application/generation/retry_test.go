package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "inkwell-book-api/pkg/errors"
)

func TestDelayDoublesFromBase(t *testing.T) {
	p := NewRetryPolicy(3, time.Second, nil)

	if got := p.Delay(1); got != 2*time.Second {
		t.Fatalf("Delay(1) = %v, want 2s", got)
	}
	if got := p.Delay(2); got != 4*time.Second {
		t.Fatalf("Delay(2) = %v, want 4s", got)
	}
}

func TestExecuteSucceedsFirstAttempt(t *testing.T) {
	p := NewRetryPolicy(3, time.Second, nil)
	s := &recordSleeper{}
	p.Sleep = s.sleep

	result, attempts, err := p.Execute(context.Background(), 1, func(ctx context.Context) (*Result, error) {
		return &Result{Content: "text"}, nil
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
	if result.Content != "text" {
		t.Fatalf("content = %q", result.Content)
	}
	if len(s.delays) != 0 {
		t.Fatalf("sleeps = %v, want none", s.delays)
	}
}

func TestExecuteRecoversAfterTransientFailure(t *testing.T) {
	p := NewRetryPolicy(3, time.Second, nil)
	s := &recordSleeper{}
	p.Sleep = s.sleep

	calls := 0
	result, attempts, err := p.Execute(context.Background(), 1, func(ctx context.Context) (*Result, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("temporary glitch")
		}
		return &Result{Content: "recovered"}, nil
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
	if result.Content != "recovered" {
		t.Fatalf("content = %q", result.Content)
	}
	if len(s.delays) != 1 || s.delays[0] != 2*time.Second {
		t.Fatalf("sleeps = %v, want [2s]", s.delays)
	}
}

func TestExecuteSucceedsOnLastAttempt(t *testing.T) {
	p := NewRetryPolicy(3, time.Second, nil)
	s := &recordSleeper{}
	p.Sleep = s.sleep

	calls := 0
	result, attempts, err := p.Execute(context.Background(), 2, func(ctx context.Context) (*Result, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("temporary glitch")
		}
		return &Result{Content: "third time lucky"}, nil
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
	if result.Content != "third time lucky" {
		t.Fatalf("content = %q", result.Content)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(s.delays) != 2 || s.delays[0] != want[0] || s.delays[1] != want[1] {
		t.Fatalf("sleeps = %v, want %v", s.delays, want)
	}
}

func TestExecuteExhaustsBudgetWithTwoSleeps(t *testing.T) {
	p := NewRetryPolicy(3, time.Second, nil)
	s := &recordSleeper{}
	p.Sleep = s.sleep

	cause := errors.New("still broken")
	_, attempts, err := p.Execute(context.Background(), 7, func(ctx context.Context) (*Result, error) {
		return nil, cause
	})

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want *ExhaustedError", err)
	}
	if exhausted.ChapterNumber != 7 || exhausted.Attempts != 3 {
		t.Fatalf("exhausted = %+v, want chapter 7 after 3 attempts", exhausted)
	}
	if !errors.Is(err, cause) {
		t.Fatal("exhausted error does not wrap the underlying cause")
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}

	// 3 次尝试之间恰好 2 次休眠，时长 2s、4s
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(s.delays) != 2 || s.delays[0] != want[0] || s.delays[1] != want[1] {
		t.Fatalf("sleeps = %v, want %v", s.delays, want)
	}
}

func TestExecuteFatalStopsImmediately(t *testing.T) {
	p := NewRetryPolicy(3, time.Second, nil)
	s := &recordSleeper{}
	p.Sleep = s.sleep

	calls := 0
	_, attempts, err := p.Execute(context.Background(), 2, func(ctx context.Context) (*Result, error) {
		calls++
		return nil, apperrors.New(apperrors.CodeCredentialRevoked, "api key revoked")
	})

	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("err = %v, want *FatalError", err)
	}
	if calls != 1 || attempts != 1 {
		t.Fatalf("calls/attempts = %d/%d, want 1/1", calls, attempts)
	}
	if len(s.delays) != 0 {
		t.Fatalf("sleeps = %v, want none for fatal", s.delays)
	}
}

func TestExecuteReturnsContextErrorOnCancel(t *testing.T) {
	p := NewRetryPolicy(3, time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())

	_, _, err := p.Execute(ctx, 1, func(ctx context.Context) (*Result, error) {
		cancel()
		return nil, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	var fatal *FatalError
	var exhausted *ExhaustedError
	if errors.As(err, &fatal) || errors.As(err, &exhausted) {
		t.Fatal("cancellation must not be wrapped as fatal or exhausted")
	}
}

func TestSleepContextInterruptible(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := SleepContext(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("SleepContext did not return promptly on cancel")
	}
}
