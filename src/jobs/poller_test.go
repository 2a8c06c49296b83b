package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedFetch replays a fixed status sequence, holding the last status
// once the script runs out.
func scriptedFetch(statuses []Status) FetchFunc {
	i := 0
	return func(context.Context) (Status, error) {
		s := statuses[i]
		if i < len(statuses)-1 {
			i++
		}
		return s, nil
	}
}

func TestPollerEdgeTriggeredEvents(t *testing.T) {
	var changes []Status
	p := Poller{
		Interval: time.Millisecond,
		OnChange: func(s Status) error {
			changes = append(changes, s)
			return nil
		},
	}

	status, err := p.Wait(context.Background(), scriptedFetch([]Status{
		StatusQueued, StatusQueued, StatusRunning, StatusRunning, StatusSucceeded,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusSucceeded {
		t.Fatalf("expected succeeded, got %s", status)
	}
	if len(changes) != 2 || changes[0] != StatusRunning || changes[1] != StatusSucceeded {
		t.Fatalf("expected [running succeeded], got %v", changes)
	}
}

func TestPollerImmediateFailure(t *testing.T) {
	var changes []Status
	p := Poller{
		Interval: time.Millisecond,
		OnChange: func(s Status) error {
			changes = append(changes, s)
			return nil
		},
	}

	status, err := p.Wait(context.Background(), scriptedFetch([]Status{StatusQueued, StatusFailed}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusFailed {
		t.Fatalf("expected failed, got %s", status)
	}
	if len(changes) != 1 || changes[0] != StatusFailed {
		t.Fatalf("expected single queued->failed transition, got %v", changes)
	}
}

func TestPollerBudgetExhaustion(t *testing.T) {
	p := Poller{Interval: time.Millisecond, MaxAttempts: 3}
	attempts := 0

	status, err := p.Wait(context.Background(), func(context.Context) (Status, error) {
		attempts++
		return StatusRunning, nil
	})
	if !errors.Is(err, ErrBudget) {
		t.Fatalf("expected ErrBudget, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if status != StatusRunning {
		t.Fatalf("expected last observed status running, got %s", status)
	}
}

func TestPollerStopsOnFetchError(t *testing.T) {
	p := Poller{Interval: time.Millisecond}
	attempts := 0
	fetchErr := errors.New("connection reset")

	_, err := p.Wait(context.Background(), func(context.Context) (Status, error) {
		attempts++
		return "", fetchErr
	})
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected no retry after a failed poll, got %d attempts", attempts)
	}
}

func TestPollerHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Poller{Interval: time.Hour}
	_, err := p.Wait(ctx, func(context.Context) (Status, error) {
		t.Fatal("fetch must not run after cancellation")
		return "", nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPollerStopsOnCallbackError(t *testing.T) {
	cbErr := errors.New("consumer gone")
	p := Poller{
		Interval: time.Millisecond,
		OnChange: func(Status) error { return cbErr },
	}
	_, err := p.Wait(context.Background(), scriptedFetch([]Status{StatusRunning, StatusSucceeded}))
	if !errors.Is(err, cbErr) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusSucceeded, StatusFailed, StatusCancelled} {
		if !s.Terminal() {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	for _, s := range []Status{StatusQueued, StatusPreprocessing, StatusRunning, StatusProcessing} {
		if s.Terminal() {
			t.Fatalf("expected %s to be non-terminal", s)
		}
	}
}
