package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNextDelayBounds(t *testing.T) {
	policy := Policy{BaseDelay: 2 * time.Second, MaxDelay: 10 * time.Second, MaxAttempts: 5}

	expected := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}

	for attempt, want := range expected {
		got := policy.NextDelay(attempt)
		if got != want {
			t.Errorf("Attempt %d: expected delay %v, got %v", attempt, want, got)
		}
	}

	// Ceiling holds no matter how far the schedule runs
	for attempt := 5; attempt < 40; attempt++ {
		if got := policy.NextDelay(attempt); got > policy.MaxDelay {
			t.Errorf("Attempt %d: delay %v exceeds ceiling %v", attempt, got, policy.MaxDelay)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	policy := Policy{BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, MaxAttempts: 3}
	transport := &TransportError{Op: "fetch", URL: "http://example.com", StatusCode: 500}

	if !policy.ShouldRetry(transport, 0) {
		t.Error("Expected retryable error on first attempt to be retried")
	}
	if !policy.ShouldRetry(transport, 1) {
		t.Error("Expected retryable error on second attempt to be retried")
	}
	if policy.ShouldRetry(transport, 2) {
		t.Error("Expected no retry once attempts are exhausted")
	}
	if policy.ShouldRetry(errors.New("boom"), 0) {
		t.Error("Expected plain errors to be treated as permanent")
	}
}

func TestIsRetryableWrapped(t *testing.T) {
	wrapped := fmt.Errorf("processing item: %w", &TransportError{Op: "fetch", URL: "http://example.com", Err: errors.New("connection refused")})
	if !IsRetryable(wrapped) {
		t.Error("Expected wrapped transport error to be retryable")
	}
	if IsRetryable(errors.New("nil pointer dereference")) {
		t.Error("Expected plain error to be non-retryable")
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	policy := Policy{BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, MaxAttempts: 3}

	calls := 0
	err := policy.Do(context.Background(), "test", func() error {
		calls++
		return &TransportError{Op: "test", URL: "http://example.com", StatusCode: 503}
	})

	if err == nil {
		t.Fatal("Expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", calls)
	}

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Errorf("Expected last transport error to surface, got: %v", err)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	policy := Policy{BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, MaxAttempts: 5}

	calls := 0
	permanent := errors.New("invalid request body")
	err := policy.Do(context.Background(), "test", func() error {
		calls++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Errorf("Expected permanent error to surface, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 attempt for permanent error, got %d", calls)
	}
}

func TestDoSucceedsAfterRetry(t *testing.T) {
	policy := Policy{BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, MaxAttempts: 3}

	calls := 0
	err := policy.Do(context.Background(), "test", func() error {
		calls++
		if calls < 2 {
			return &TransportError{Op: "test", URL: "http://example.com", StatusCode: 502}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected success after retry, got: %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 attempts, got %d", calls)
	}
}
