package corpus

import (
	"context"
	"log/slog"
	"time"
)

// progressLogEvery spaces out "still in progress" log lines during long polls.
const progressLogEvery = 12

// StatusSource reads the current state of an operation by name.
type StatusSource interface {
	GetOperation(ctx context.Context, name string) (*Operation, error)
}

// Poller drives an asynchronous import operation to a terminal state by
// bounded polling. An unbounded poll could hang the whole pipeline on one
// stuck operation, so the attempt ceiling is a hard stop.
type Poller struct {
	source      StatusSource
	interval    time.Duration
	maxAttempts int
}

func NewPoller(source StatusSource, interval time.Duration, maxAttempts int) *Poller {
	return &Poller{
		source:      source,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// Wait polls until op reaches a terminal state or the attempt budget runs
// out. A terminal error surfaces immediately as OperationFailedError; running
// out of budget surfaces as PollTimeoutError.
func (p *Poller) Wait(ctx context.Context, op *Operation) (*ImportResult, error) {
	if op.Done {
		return p.terminal(op)
	}

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		current, err := p.source.GetOperation(ctx, op.Name)
		if err != nil {
			return nil, err
		}

		if current.Done {
			return p.terminal(current)
		}

		if attempt%progressLogEvery == 0 {
			slog.Info("Import operation still in progress", "operation", op.Name, "attempt", attempt, "max_attempts", p.maxAttempts)
		}

		if attempt < p.maxAttempts {
			select {
			case <-time.After(p.interval):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, &PollTimeoutError{Name: op.Name, Attempts: p.maxAttempts, Interval: p.interval}
}

func (p *Poller) terminal(op *Operation) (*ImportResult, error) {
	if op.Error != nil {
		return nil, &OperationFailedError{Name: op.Name, Code: op.Error.Code, Message: op.Error.Message}
	}
	if op.Response == nil {
		return &ImportResult{}, nil
	}
	return op.Response, nil
}
