package jobwatcher

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
	"github.com/G-Research/jobbench/internal/jobbench/metrics"
	"github.com/G-Research/jobbench/pkg/client/domain"
	"github.com/G-Research/jobbench/pkg/jobservice"
)

const DefaultInterval = 10 * time.Second

// JobWatcher polls the job service until every monitored job is SUCCEEDED or FAILED.
// There is no timeout: failed polls are logged and retried after the usual interval, forever.
type JobWatcher struct {
	Service  jobservice.Service
	Interval time.Duration
	Clock    clock.Clock
	// Optional.
	Metrics *metrics.Metrics
	// Optional.
	CompletionLog *CompletionLog
	// If set, a status table is written here after every successful poll.
	Out io.Writer
}

// Result summarises a finished watch. Jobs are in the order they were observed to finish.
type Result struct {
	Succeeded  []*JobInfo
	Failed     []*JobInfo
	PollCycles int
	PollErrors int
	Elapsed    time.Duration
}

// JobsFromOutcomes returns the ids and names of the submitted outcomes.
func JobsFromOutcomes(outcomes []*domain.JobSubmissionOutcome) map[string]string {
	jobs := make(map[string]string, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			jobs[outcome.JobId] = outcome.JobName
		}
	}
	return jobs
}

// Watch blocks until all jobs, keyed by id with names as values, have reached a terminal status.
// Each cycle issues a single DescribeMany call covering the jobs still pending.
// Only cancellation of ctx ends the watch early; it is checked between cycles.
func (w *JobWatcher) Watch(ctx context.Context, jobs map[string]string) (*Result, error) {
	start := w.Clock.Now()
	watchContext := NewWatchContext(jobs, start)
	result := &Result{}
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log.Infof("Monitoring %d jobs, polling every %s", len(jobs), interval)
	unknown := make(map[string]bool)

	for !watchContext.AreJobsFinished() {
		if err := ctx.Err(); err != nil {
			result.Elapsed = w.Clock.Since(start)
			return w.collect(watchContext, result), errors.WithStack(err)
		}
		result.PollCycles++
		err := w.poll(ctx, watchContext, result.PollCycles, unknown)
		if w.Metrics != nil {
			w.Metrics.RecordPoll(err)
		}
		if err != nil {
			result.PollErrors++
			logger := log.WithField("pollCycle", result.PollCycles).WithError(err)
			logger.Warnf("Error polling job statuses, retrying in %s", interval)
		} else {
			log.Infof("%s (completed %d/%d)",
				watchContext.GetCurrentStateSummary(), watchContext.GetNumberOfFinishedJobs(), watchContext.GetNumberOfJobs())
			if w.Out != nil {
				w.printSnapshot(watchContext, result.PollCycles)
			}
			if w.Metrics != nil {
				w.Metrics.RecordStatusSummary(watchContext.GetStateSummary())
			}
		}
		if !watchContext.AreJobsFinished() {
			w.Clock.Sleep(interval)
		}
	}

	result.Elapsed = w.Clock.Since(start)
	w.collect(watchContext, result)
	log.Infof("All %d jobs finished in %s: %d succeeded, %d failed",
		len(jobs), result.Elapsed.Round(time.Second), len(result.Succeeded), len(result.Failed))
	return result, nil
}

// poll describes the pending jobs once. Jobs the service doesn't return are left pending;
// each is reported once through unknown, as the service may simply not know the id.
func (w *JobWatcher) poll(ctx context.Context, watchContext *WatchContext, cycle int, unknown map[string]bool) error {
	pending := watchContext.PendingJobIds()
	observations, err := w.Service.DescribeMany(ctx, pending)
	if err != nil {
		return &jobbencherrors.ErrPollTransient{Cycle: cycle, Err: err}
	}
	now := w.Clock.Now()
	observed := make(map[string]bool, len(observations))
	for _, observation := range observations {
		observed[observation.JobId] = true
		if !watchContext.ProcessObservation(observation, now) {
			continue
		}
		w.reportTerminal(watchContext.GetJobInfo(observation.JobId))
	}
	for _, jobId := range pending {
		if observed[jobId] || unknown[jobId] {
			continue
		}
		unknown[jobId] = true
		log.WithField("jobId", jobId).WithField("jobName", watchContext.GetJobInfo(jobId).JobName).
			Warn("Job service returned no status for job; it will keep being polled")
	}
	return nil
}

func (w *JobWatcher) printSnapshot(watchContext *WatchContext, cycle int) {
	summary := watchContext.GetStateSummary()
	_, _ = fmt.Fprintf(w.Out, "\nPoll %d: completed %d/%d\n",
		cycle, watchContext.GetNumberOfFinishedJobs(), watchContext.GetNumberOfJobs())
	table := tablewriter.NewWriter(w.Out)
	table.SetHeader([]string{"Status", "Jobs"})
	for _, status := range append(domain.JobStatuses(), watchContext.unknownStatuses()...) {
		if summary[status] == 0 {
			continue
		}
		table.Append([]string{string(status), fmt.Sprint(summary[status])})
	}
	table.Render()
}

func (w *JobWatcher) reportTerminal(info *JobInfo) {
	logger := log.WithField("jobId", info.JobId).WithField("jobName", info.JobName)
	if info.Status == domain.Succeeded {
		logger.Info("Job succeeded")
	} else {
		logger.WithField("reason", info.StatusReason).Warn("Job failed")
	}
	if w.Metrics != nil {
		w.Metrics.RecordTerminal(info.Status)
	}
	if w.CompletionLog != nil {
		if err := w.CompletionLog.Record(info); err != nil {
			logger.WithError(err).Error("Could not write completion log entry")
		}
	}
}

func (w *JobWatcher) collect(watchContext *WatchContext, result *Result) *Result {
	result.Succeeded, result.Failed = nil, nil
	for _, info := range watchContext.Completed() {
		if info.Status == domain.Succeeded {
			result.Succeeded = append(result.Succeeded, info)
		} else {
			result.Failed = append(result.Failed, info)
		}
	}
	return result
}
