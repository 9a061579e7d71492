package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// SubmissionStatus records whether a submit call succeeded.
type SubmissionStatus string

const (
	StatusSubmitted      SubmissionStatus = "SUBMITTED"
	StatusFailedToSubmit SubmissionStatus = "FAILED_TO_SUBMIT"
)

// JobSubmissionOutcome is the recorded result of one submission attempt.
// Exactly one of JobId and Error is set.
type JobSubmissionOutcome struct {
	JobId            string           `json:"jobId,omitempty"`
	JobName          string           `json:"jobName"`
	SubmissionTime   time.Time        `json:"submissionTime"`
	SubmitDuration   float64          `json:"submitDuration"`
	CountdownSeconds int              `json:"countdownSeconds,omitempty"`
	Status           SubmissionStatus `json:"status"`
	Error            string           `json:"error,omitempty"`
}

func (o *JobSubmissionOutcome) Succeeded() bool {
	return o.Status == StatusSubmitted
}

// Validate checks the outcome carries an id if and only if it was submitted.
func (o *JobSubmissionOutcome) Validate() error {
	switch o.Status {
	case StatusSubmitted:
		if o.JobId == "" || o.Error != "" {
			return fmt.Errorf("submitted job %s must have a job id and no error", o.JobName)
		}
	case StatusFailedToSubmit:
		if o.JobId != "" || o.Error == "" {
			return fmt.Errorf("failed job %s must have an error and no job id", o.JobName)
		}
	default:
		return fmt.Errorf("job %s has unknown submission status %q", o.JobName, o.Status)
	}
	if o.JobName == "" {
		return fmt.Errorf("job name is empty")
	}
	return nil
}

// JobName returns the name of the index-th job of a batch, e.g., concurrent-test-job007-1700000000.
// The index keeps names distinct when many jobs share the same timestamp.
func JobName(prefix string, index int, t time.Time) string {
	return fmt.Sprintf("%s-job%03d-%d", prefix, index, t.Unix())
}

var jobNameIndex = regexp.MustCompile(`-job(\d+)-\d+$`)

// JobIndex recovers the sequence index embedded by JobName.
func JobIndex(jobName string) (int, bool) {
	match := jobNameIndex.FindStringSubmatch(jobName)
	if match == nil {
		return 0, false
	}
	index, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return index, true
}
