package normalize

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_AdmitsWithinLimit(t *testing.T) {
	limiter := newRateLimiter(3, 200*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Admit(ctx); err != nil {
			t.Fatalf("Admit %d should not fail: %v", i+1, err)
		}
	}

	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("First three admits should not block, took %v", elapsed)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	limiter := newRateLimiter(3, 200*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.Admit(ctx); err != nil {
			t.Fatalf("Admit %d should not fail: %v", i+1, err)
		}
	}

	// The fourth request must wait for the window to roll over
	start := time.Now()
	if err := limiter.Admit(ctx); err != nil {
		t.Fatalf("Fourth admit should eventually succeed: %v", err)
	}

	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("Fourth admit should block until the window rolls over, returned after %v", elapsed)
	}
}

func TestRateLimiter_WindowRollsOver(t *testing.T) {
	limiter := newRateLimiter(2, 100*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := limiter.Admit(ctx); err != nil {
			t.Fatalf("Admit %d should not fail: %v", i+1, err)
		}
	}

	time.Sleep(120 * time.Millisecond)

	start := time.Now()
	if err := limiter.Admit(ctx); err != nil {
		t.Fatalf("Admit after window rollover should not fail: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Admit after window rollover should not block, took %v", elapsed)
	}
}

func TestRateLimiter_ContextCancellation(t *testing.T) {
	limiter := newRateLimiter(1, 10*time.Second)

	if err := limiter.Admit(context.Background()); err != nil {
		t.Fatalf("First admit should not fail: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Admit(ctx)
	if err == nil {
		t.Fatal("Admit should fail when the context expires while waiting")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}

func TestRateLimiter_MinimumLimit(t *testing.T) {
	limiter := newRateLimiter(0, time.Minute)

	if limiter.limit != 1 {
		t.Errorf("Expected limit to be clamped to 1, got %d", limiter.limit)
	}
}
