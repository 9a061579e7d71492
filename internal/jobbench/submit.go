package jobbench

import (
	"context"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/G-Research/jobbench/internal/jobbench/configuration"
	"github.com/G-Research/jobbench/internal/jobbench/jobwatcher"
	"github.com/G-Research/jobbench/internal/jobbench/metrics"
	"github.com/G-Research/jobbench/internal/jobbench/resultstore"
	"github.com/G-Research/jobbench/internal/jobbench/submitter"
	"github.com/G-Research/jobbench/pkg/client/domain"
	"github.com/G-Research/jobbench/pkg/jobservice"
)

// SubmitResult is what a Submit run produced.
type SubmitResult struct {
	Batch *domain.BatchResult
	// Where the batch was saved.
	Path string
	// Nil unless the jobs were monitored.
	Watch *jobwatcher.Result
}

// Submit submits one batch, saves it and, if configured, monitors the submitted jobs until they have
// all finished. The batch is saved before monitoring starts, so that an interrupted monitor doesn't
// lose the submission record.
func (a *App) Submit(ctx context.Context, config configuration.SubmitConfig) (*SubmitResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	runId, err := a.newRunId()
	if err != nil {
		return nil, err
	}
	m := newMetrics()
	defer pushMetrics(context.Background(), m, config.Metrics, runId)

	var result *SubmitResult
	err = a.withJobService(ctx, func(service jobservice.Service) error {
		result, err = a.submit(ctx, service, m, runId, config)
		return err
	})
	return result, err
}

func (a *App) submit(ctx context.Context, service jobservice.Service, m *metrics.Metrics, runId string, config configuration.SubmitConfig) (*SubmitResult, error) {
	s := &submitter.Submitter{
		Client: &submitter.JobClient{
			Service:       service,
			JobQueue:      config.JobQueue,
			JobDefinition: config.JobDefinition,
			Tags:          submitter.RunTags(runId),
			Clock:         a.Clock,
		},
		NamePrefix: config.NamePrefix,
		Clock:      a.Clock,
		Metrics:    m,
	}
	log.WithField("runId", runId).Infof("Starting run %s", runId)
	batch, err := s.SubmitBatch(ctx, config.NumJobs, config.Parameters, config.MaxWorkers)
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{Batch: batch.Result(runId, config.JobQueue, config.JobDefinition)}
	result.Path = config.Output
	if result.Path == "" {
		result.Path = filepath.Join(config.OutputDir, resultstore.DefaultFileName(result.Batch))
	}
	if err := resultstore.Save(result.Batch, result.Path); err != nil {
		return nil, err
	}
	log.WithField("file", result.Path).Infof("Saved results of run %s", runId)
	a.printBatch(result.Batch, result.Path)

	if !config.Monitor {
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	result.Watch, err = a.watch(ctx, service, m, config.Watch, jobwatcher.JobsFromOutcomes(result.Batch.Jobs))
	return result, err
}

func (a *App) watch(ctx context.Context, service jobservice.Service, m *metrics.Metrics, config configuration.WatchConfig, jobs map[string]string) (*jobwatcher.Result, error) {
	out, closeLog, err := openCompletionLog(config.CompletionLog)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	watcher := &jobwatcher.JobWatcher{
		Service:  service,
		Interval: config.Interval,
		Clock:    a.Clock,
		Metrics:  m,
		Out:      a.Out,
	}
	if out != nil {
		watcher.CompletionLog = jobwatcher.NewCompletionLog(out)
	}
	result, err := watcher.Watch(ctx, jobs)
	if result != nil {
		a.printWatch(result, len(jobs))
	}
	return result, err
}

func (a *App) printBatch(batch *domain.BatchResult, path string) {
	fmt.Fprintf(a.Out, "\nBatch %s: %d jobs submitted to %s\n", batch.RunId, batch.TotalJobs, batch.JobQueue)
	fmt.Fprintf(a.Out, "Successful submissions: %d\n", batch.SuccessfulJobs)
	fmt.Fprintf(a.Out, "Failed submissions: %d\n", batch.FailedJobs)
	fmt.Fprintf(a.Out, "Elapsed: %.2fs\n", batch.ElapsedSeconds)
	fmt.Fprintf(a.Out, "Results saved to %s\n", path)
}

func (a *App) printWatch(result *jobwatcher.Result, monitored int) {
	fmt.Fprintf(a.Out, "\nMonitored %d jobs over %d poll cycles (%d failed polls) in %s\n",
		monitored, result.PollCycles, result.PollErrors, result.Elapsed)
	fmt.Fprintf(a.Out, "Succeeded: %d\n", len(result.Succeeded))
	fmt.Fprintf(a.Out, "Failed: %d\n", len(result.Failed))
	for _, info := range result.Failed {
		fmt.Fprintf(a.Out, "\t%s (%s): %s\n", info.JobName, info.JobId, info.StatusReason)
	}
}
