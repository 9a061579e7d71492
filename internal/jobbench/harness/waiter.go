package harness

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/G-Research/jobbench/pkg/client/domain"
)

type State string

const (
	Waiting   State = "waiting"
	Succeeded State = "succeeded"
	Failed    State = "failed"
	TimedOut  State = "timed_out"
)

const (
	DefaultMaxWait        = 300 * time.Second
	DefaultInterval       = 10 * time.Second
	defaultStatusAttempts = 3
	defaultRetryDelay     = time.Second
)

// Waiter waits a bounded amount of time for a launched task to stop.
type Waiter struct {
	Gateway  Gateway
	Clock    clock.Clock
	MaxWait  time.Duration
	Interval time.Duration
	// Attempts per status query before the poll counts as failed.
	StatusAttempts uint
	RetryDelay     time.Duration
}

type WaitResult struct {
	State State
	// Last status successfully read, if any.
	Status  *domain.TaskStatus
	Polls   int
	Elapsed time.Duration
}

// Wait polls the task status until the task stops or the budget runs out. Once the budget is spent
// one final status is read before giving up. Failed polls leave the state at waiting.
// Cancelling ctx aborts the wait, including mid-sleep, and returns the context's error.
func (w *Waiter) Wait(ctx context.Context, request *domain.TaskStatusRequest) (*WaitResult, error) {
	maxWait := valueOrDefault(w.MaxWait, DefaultMaxWait)
	interval := valueOrDefault(w.Interval, DefaultInterval)
	start := w.Clock.Now()
	result := &WaitResult{State: Waiting}
	logger := log.WithField("taskArn", request.TaskArn)
	logger.Infof("Waiting for task to stop (at most %s)", maxWait)

	for {
		status, err := w.queryStatus(ctx, request)
		result.Polls++
		if ctxErr := ctx.Err(); ctxErr != nil {
			result.Elapsed = w.Clock.Since(start)
			return result, errors.WithStack(ctxErr)
		}
		if err != nil {
			logger.WithError(err).Warnf("Could not read task status on poll %d", result.Polls)
		} else {
			result.Status = status
			result.State = transition(status)
			logger.Infof("Task status: %s", status.LastStatus)
		}
		elapsed := w.Clock.Since(start)
		if result.State != Waiting {
			result.Elapsed = elapsed
			return result, nil
		}
		if elapsed >= maxWait {
			result.State = TimedOut
			result.Elapsed = elapsed
			logger.Warnf("Timed out after %s waiting for task to stop", maxWait)
			return result, nil
		}

		sleep := interval
		if remaining := maxWait - elapsed; remaining < sleep {
			sleep = remaining
		}
		select {
		case <-ctx.Done():
			result.Elapsed = w.Clock.Since(start)
			return result, errors.WithStack(ctx.Err())
		case <-w.Clock.After(sleep):
		}
	}
}

func transition(status *domain.TaskStatus) State {
	if !status.IsStopped() {
		return Waiting
	}
	if exitCode, ok := status.ExitCode(); ok && exitCode == 0 {
		return Succeeded
	}
	return Failed
}

// queryStatus retries transient failures; client errors are returned straight away.
func (w *Waiter) queryStatus(ctx context.Context, request *domain.TaskStatusRequest) (*domain.TaskStatus, error) {
	var status *domain.TaskStatus
	attempts := w.StatusAttempts
	if attempts == 0 {
		attempts = defaultStatusAttempts
	}
	err := retry.Do(
		func() error {
			var err error
			status, err = w.Gateway.Status(ctx, request)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(valueOrDefault(w.RetryDelay, defaultRetryDelay)),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTemporary),
	)
	return status, err
}

func isTemporary(err error) bool {
	var gatewayErr *GatewayError
	if errors.As(err, &gatewayErr) {
		return gatewayErr.Temporary()
	}
	return true
}

func valueOrDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
