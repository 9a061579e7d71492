package jobwatcher

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/G-Research/jobbench/pkg/client/domain"
)

type JobInfo struct {
	JobId        string
	JobName      string
	Status       domain.JobStatus
	StatusReason string
	LastUpdate   time.Time
}

// WatchContext keeps track of the last observed status of each monitored job.
// Once a job is terminal its status is never changed again.
// It is not threadsafe and is expected to only ever be used in a single thread.
type WatchContext struct {
	state        map[string]*JobInfo
	stateSummary map[domain.JobStatus]int
	completed    []string
}

// NewWatchContext tracks the given jobs, keyed by job id with job names as values.
// All jobs start out SUBMITTED.
func NewWatchContext(jobs map[string]string, now time.Time) *WatchContext {
	context := &WatchContext{
		state:        make(map[string]*JobInfo, len(jobs)),
		stateSummary: make(map[domain.JobStatus]int, 7),
	}
	for id, name := range jobs {
		context.state[id] = &JobInfo{JobId: id, JobName: name, Status: domain.Submitted, LastUpdate: now}
	}
	context.stateSummary[domain.Submitted] = len(jobs)
	return context
}

// ProcessObservation applies one observation and reports whether it moved the job into a terminal
// status. Observations of unknown or already terminal jobs are ignored.
func (context *WatchContext) ProcessObservation(observation domain.JobStatusObservation, now time.Time) bool {
	info, exists := context.state[observation.JobId]
	if !exists || info.Status.IsTerminal() || observation.LastStatus == "" {
		return false
	}
	context.updateStateSummary(info.Status, observation.LastStatus)
	info.Status = observation.LastStatus
	info.StatusReason = observation.StatusReason
	info.LastUpdate = now
	if observation.JobName != "" {
		info.JobName = observation.JobName
	}
	if info.Status.IsTerminal() {
		context.completed = append(context.completed, info.JobId)
		return true
	}
	return false
}

func (context *WatchContext) updateStateSummary(oldJobStatus domain.JobStatus, newJobStatus domain.JobStatus) {
	if oldJobStatus == newJobStatus {
		return
	}
	context.stateSummary[oldJobStatus]--
	context.stateSummary[newJobStatus]++
}

func (context *WatchContext) GetJobInfo(jobId string) *JobInfo {
	return context.state[jobId]
}

// PendingJobIds returns the ids of jobs not yet terminal, sorted.
func (context *WatchContext) PendingJobIds() []string {
	var pending []string
	for id, info := range context.state {
		if !info.Status.IsTerminal() {
			pending = append(pending, id)
		}
	}
	slices.Sort(pending)
	return pending
}

// Completed returns the terminal jobs in the order they were observed to finish.
func (context *WatchContext) Completed() []*JobInfo {
	result := make([]*JobInfo, 0, len(context.completed))
	for _, id := range context.completed {
		result = append(result, context.state[id])
	}
	return result
}

func (context *WatchContext) GetStateSummary() map[domain.JobStatus]int {
	return maps.Clone(context.stateSummary)
}

func (context *WatchContext) GetCurrentStateSummary() string {
	var summary strings.Builder
	for i, status := range domain.JobStatuses() {
		if i > 0 {
			summary.WriteString(", ")
		}
		summary.WriteString(fmt.Sprintf("%s: %3d", status, context.stateSummary[status]))
	}
	for _, status := range context.unknownStatuses() {
		summary.WriteString(fmt.Sprintf(", %s: %3d", status, context.stateSummary[status]))
	}
	return summary.String()
}

// Statuses outside the vocabulary are still counted, so the summary always adds up.
func (context *WatchContext) unknownStatuses() []domain.JobStatus {
	var result []domain.JobStatus
	for status, count := range context.stateSummary {
		if !status.IsKnown() && count > 0 {
			result = append(result, status)
		}
	}
	slices.Sort(result)
	return result
}

func (context *WatchContext) GetNumberOfFinishedJobs() int {
	return len(context.completed)
}

func (context *WatchContext) GetNumberOfJobs() int {
	return len(context.state)
}

func (context *WatchContext) AreJobsFinished() bool {
	return len(context.completed) == len(context.state)
}
