package submitter

import (
	"context"

	"k8s.io/utils/clock"

	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
	"github.com/G-Research/jobbench/pkg/client/domain"
	"github.com/G-Research/jobbench/pkg/jobservice"
)

const (
	LaunchedByTag = "LaunchedBy"
	RunIdTag      = "RunId"
)

// RunTags are the tags attached to every job submitted in a run.
func RunTags(runId string) map[string]string {
	return map[string]string{LaunchedByTag: "jobbench", RunIdTag: runId}
}

// JobClient submits one job at a time and records the outcome.
type JobClient struct {
	Service       jobservice.Service
	JobQueue      string
	JobDefinition string
	// Sent with every job. Shared between calls, so must not be modified once submitting starts.
	Tags  map[string]string
	Clock clock.PassiveClock
}

// Submit issues a single submit call. The returned outcome is always non-nil; when the call fails the
// outcome is FAILED_TO_SUBMIT and the error is also returned, as an *ErrSubmission, for logging.
func (c *JobClient) Submit(ctx context.Context, jobName string, params domain.JobParameters) (*domain.JobSubmissionOutcome, error) {
	start := c.Clock.Now()
	response, err := c.Service.Submit(ctx, &jobservice.SubmitRequest{
		JobName:       jobName,
		JobQueue:      c.JobQueue,
		JobDefinition: c.JobDefinition,
		Parameters:    params.AsMap(),
		Tags:          c.Tags,
	})
	outcome := &domain.JobSubmissionOutcome{
		JobName:          jobName,
		SubmissionTime:   start,
		SubmitDuration:   c.Clock.Since(start).Seconds(),
		CountdownSeconds: params.CountdownSeconds,
	}
	if err == nil && response.JobId == "" {
		err = &jobbencherrors.ErrInvalidArgument{Name: "jobId", Value: "", Message: "service accepted the job without assigning an id"}
	}
	if err != nil {
		outcome.Status = domain.StatusFailedToSubmit
		outcome.Error = err.Error()
		return outcome, &jobbencherrors.ErrSubmission{JobName: jobName, Err: err}
	}
	outcome.Status = domain.StatusSubmitted
	outcome.JobId = response.JobId
	return outcome, nil
}
