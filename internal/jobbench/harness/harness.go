package harness

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/G-Research/jobbench/pkg/client/domain"
)

// Harness launches one task through the gateway and optionally waits for it to finish.
type Harness struct {
	Gateway Gateway
	Waiter  *Waiter
	Clock   clock.PassiveClock
}

type Report struct {
	Request   *domain.LaunchTaskRequest
	Launch    *domain.LaunchTaskResponse
	LaunchErr error
	// Nil when the harness didn't wait.
	Wait      *WaitResult
	StartTime time.Time
	Duration  time.Duration
}

// Passed reports whether the task launched and, if waited for, stopped with exit code 0.
func (r *Report) Passed() bool {
	if r.LaunchErr != nil || r.Launch == nil {
		return false
	}
	return r.Wait == nil || r.Wait.State == Succeeded
}

// Run launches the task and, if wait is set, waits for it to stop. Launch and task failures are
// recorded in the report; only cancellation is returned as an error.
func (h *Harness) Run(ctx context.Context, request *domain.LaunchTaskRequest, clusterName string, wait bool) (*Report, error) {
	report := &Report{Request: request, StartTime: h.Clock.Now()}
	defer func() { report.Duration = h.Clock.Since(report.StartTime) }()

	launch, err := h.Gateway.Launch(ctx, request)
	if err != nil {
		log.WithError(err).Error("Failed to launch task")
		report.LaunchErr = err
		return report, nil
	}
	report.Launch = launch
	log.WithField("taskArn", launch.TaskArn).Infof("Launched task %s with arguments %v", launch.TaskId, launch.ExeArgs)
	if !wait {
		return report, nil
	}

	result, err := h.Waiter.Wait(ctx, &domain.TaskStatusRequest{TaskArn: launch.TaskArn, ClusterName: clusterName})
	report.Wait = result
	if err != nil {
		return report, errors.WithMessage(err, "wait for task aborted")
	}
	return report, nil
}

// Print writes a human-readable summary of the report.
func (r *Report) Print(out io.Writer) {
	_, _ = fmt.Fprintf(out, "\nTask launch test report:\n")
	_, _ = fmt.Fprintf(out, "\targuments: %s\n", strings.Join(r.Request.ExeArgs, " "))
	if r.LaunchErr != nil {
		_, _ = fmt.Fprintf(out, "\tlaunch failed: %s\n", r.LaunchErr)
	} else if r.Launch != nil {
		_, _ = fmt.Fprintf(out, "\ttask: %s (%s)\n", r.Launch.TaskId, r.Launch.TaskArn)
	}
	if r.Wait != nil {
		_, _ = fmt.Fprintf(out, "\tstate: %s after %d polls in %s\n", r.Wait.State, r.Wait.Polls, r.Wait.Elapsed.Round(time.Second))
		if r.Wait.Status != nil {
			_, _ = fmt.Fprintf(out, "\tlast status: %s\n", r.Wait.Status.LastStatus)
			if exitCode, ok := r.Wait.Status.ExitCode(); ok {
				_, _ = fmt.Fprintf(out, "\texit code: %d\n", exitCode)
			}
		}
	}
	if r.Passed() {
		_, _ = fmt.Fprintf(out, "\tresult: PASSED\n")
	} else {
		_, _ = fmt.Fprintf(out, "\tresult: FAILED\n")
	}
}
