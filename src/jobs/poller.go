// Package jobs implements the polling state machine that drives an
// asynchronous provider-side job from submission to a terminal status.
package jobs

import (
	"context"
	"errors"
	"time"
)

// Status is a provider-reported job status. Providers may report statuses
// outside this set; only the terminal ones carry meaning here.
type Status string

const (
	StatusQueued        Status = "queued"
	StatusPreprocessing Status = "preprocessing"
	StatusRunning       Status = "running"
	StatusProcessing    Status = "processing"
	StatusSucceeded     Status = "succeeded"
	StatusFailed        Status = "failed"
	StatusCancelled     Status = "cancelled"
)

// Terminal reports whether the job will not change status again.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// ErrBudget is returned when the attempt budget runs out before the job
// reaches a terminal status.
var ErrBudget = errors.New("job polling budget exhausted")

// FetchFunc retrieves the current job status from the provider.
type FetchFunc func(ctx context.Context) (Status, error)

const (
	defaultInterval = 2 * time.Second
	defaultAttempts = 900
)

// Poller repeatedly fetches a job's status at a constant interval until a
// terminal status, a fetch error, context cancellation, or the attempt
// budget. OnChange fires only when the observed status differs from the
// previously observed one (edge-triggered); a submitted job is assumed
// queued, so the first observation emits only if it already moved on.
type Poller struct {
	Interval    time.Duration
	MaxAttempts int
	OnChange    func(Status) error
}

// Wait drives the state machine and returns the last observed status.
// A non-nil error means the terminal status was never observed.
func (p Poller) Wait(ctx context.Context, fetch FetchFunc) (Status, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}

	last := StatusQueued
	for i := 0; i < attempts; i++ {
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return last, ctx.Err()
		case <-timer.C:
		}

		status, err := fetch(ctx)
		if err != nil {
			return last, err
		}
		if status != last {
			if p.OnChange != nil {
				if cbErr := p.OnChange(status); cbErr != nil {
					return status, cbErr
				}
			}
			last = status
		}
		if status.Terminal() {
			return status, nil
		}
	}
	return last, ErrBudget
}
