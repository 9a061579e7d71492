package domain

import "golang.org/x/exp/slices"

// JobStatus is the lifecycle status the job service reports for a submitted job.
type JobStatus string

const (
	Submitted JobStatus = "SUBMITTED"
	Pending   JobStatus = "PENDING"
	Runnable  JobStatus = "RUNNABLE"
	Starting  JobStatus = "STARTING"
	Running   JobStatus = "RUNNING"
	Succeeded JobStatus = "SUCCEEDED"
	Failed    JobStatus = "FAILED"
)

// Ordered in the direction jobs move, which is also the order status summaries are printed in.
var jobStatuses = []JobStatus{Submitted, Pending, Runnable, Starting, Running, Succeeded, Failed}

// JobStatuses returns the status vocabulary in lifecycle order.
func JobStatuses() []JobStatus {
	return slices.Clone(jobStatuses)
}

// IsTerminal reports whether no further transition can occur from status.
func (status JobStatus) IsTerminal() bool {
	return status == Succeeded || status == Failed
}

// IsKnown reports whether status is part of the vocabulary.
func (status JobStatus) IsKnown() bool {
	return slices.Contains(jobStatuses, status)
}

// JobStatusObservation is the status of one job as seen by a single poll.
type JobStatusObservation struct {
	JobId        string    `json:"jobId"`
	JobName      string    `json:"jobName"`
	LastStatus   JobStatus `json:"lastStatus"`
	StatusReason string    `json:"statusReason,omitempty"`
}
