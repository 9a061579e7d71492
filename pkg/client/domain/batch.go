package domain

import (
	"fmt"
	"time"

	"golang.org/x/exp/slices"
)

// BatchResult is the record of one test run. Jobs are in completion order.
type BatchResult struct {
	RunId          string                  `json:"runId,omitempty"`
	Timestamp      time.Time               `json:"timestamp"`
	JobQueue       string                  `json:"jobQueue"`
	JobDefinition  string                  `json:"jobDefinition"`
	MaxConcurrency int                     `json:"maxConcurrency,omitempty"`
	ElapsedSeconds float64                 `json:"elapsedSeconds,omitempty"`
	TotalJobs      int                     `json:"totalJobs"`
	SuccessfulJobs int                     `json:"successfulJobs"`
	FailedJobs     int                     `json:"failedJobs"`
	Jobs           []*JobSubmissionOutcome `json:"jobs"`
}

// NewBatchResult builds a BatchResult from the outcomes of a batch, deriving the counts.
func NewBatchResult(runId string, timestamp time.Time, jobQueue, jobDefinition string, outcomes []*JobSubmissionOutcome) *BatchResult {
	batch := &BatchResult{
		RunId:         runId,
		Timestamp:     timestamp,
		JobQueue:      jobQueue,
		JobDefinition: jobDefinition,
		TotalJobs:     len(outcomes),
		Jobs:          outcomes,
	}
	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			batch.SuccessfulJobs++
		} else {
			batch.FailedJobs++
		}
	}
	return batch
}

// Validate checks the counts agree with each other and with the outcomes.
func (b *BatchResult) Validate() error {
	if b.TotalJobs < 1 {
		return fmt.Errorf("batch has no jobs")
	}
	if b.SuccessfulJobs+b.FailedJobs != b.TotalJobs {
		return fmt.Errorf("successfulJobs (%d) + failedJobs (%d) != totalJobs (%d)", b.SuccessfulJobs, b.FailedJobs, b.TotalJobs)
	}
	if b.TotalJobs != len(b.Jobs) {
		return fmt.Errorf("totalJobs is %d but %d jobs are recorded", b.TotalJobs, len(b.Jobs))
	}
	successful := 0
	for i, job := range b.Jobs {
		if job == nil {
			return fmt.Errorf("job %d is empty", i)
		}
		if err := job.Validate(); err != nil {
			return err
		}
		if job.Succeeded() {
			successful++
		}
	}
	if successful != b.SuccessfulJobs {
		return fmt.Errorf("successfulJobs is %d but %d jobs were submitted", b.SuccessfulJobs, successful)
	}
	return nil
}

// Successful returns the outcomes that were submitted, in completion order.
func (b *BatchResult) Successful() []*JobSubmissionOutcome {
	var result []*JobSubmissionOutcome
	for _, job := range b.Jobs {
		if job.Succeeded() {
			result = append(result, job)
		}
	}
	return result
}

// SubmitDurations returns the submit durations of the successful outcomes.
func (b *BatchResult) SubmitDurations() []float64 {
	var result []float64
	for _, job := range b.Successful() {
		result = append(result, job.SubmitDuration)
	}
	return result
}

// InSubmissionOrder returns a copy of the outcomes sorted by the index embedded in their names.
func (b *BatchResult) InSubmissionOrder() []*JobSubmissionOutcome {
	result := slices.Clone(b.Jobs)
	slices.SortStableFunc(result, func(a, c *JobSubmissionOutcome) bool {
		ai, _ := JobIndex(a.JobName)
		ci, _ := JobIndex(c.JobName)
		return ai < ci
	})
	return result
}
