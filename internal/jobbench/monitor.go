package jobbench

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
	"github.com/G-Research/jobbench/internal/jobbench/configuration"
	"github.com/G-Research/jobbench/internal/jobbench/jobwatcher"
	"github.com/G-Research/jobbench/internal/jobbench/resultstore"
	"github.com/G-Research/jobbench/pkg/client"
	"github.com/G-Research/jobbench/pkg/jobservice"
)

// Monitor watches the successfully submitted jobs of a saved batch until they have all finished.
func (a *App) Monitor(ctx context.Context, config configuration.MonitorConfig) (*jobwatcher.Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if details := a.Params.ServiceConnectionDetails; a.Params.JobService == nil && details != nil && details.Service == client.ServiceSimulated {
		// A new simulated service has no record of jobs submitted by an earlier run.
		return nil, errors.WithStack(&jobbencherrors.ErrConfiguration{
			Field:   "service",
			Value:   details.Service,
			Message: "saved batches can only be monitored against the batch service; use submit --monitor to watch simulated jobs",
		})
	}
	batch, err := resultstore.Load(config.ResultsFile)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	jobs := jobwatcher.JobsFromOutcomes(batch.Jobs)
	log.WithField("file", config.ResultsFile).Infof("Monitoring %d of the %d jobs of run %s", len(jobs), batch.TotalJobs, batch.RunId)

	runId := batch.RunId
	if runId == "" {
		if runId, err = a.newRunId(); err != nil {
			return nil, err
		}
	}
	m := newMetrics()
	defer pushMetrics(context.Background(), m, config.Metrics, runId)

	var result *jobwatcher.Result
	err = a.withJobService(ctx, func(service jobservice.Service) error {
		result, err = a.watch(ctx, service, m, config.Watch, jobs)
		return err
	})
	return result, err
}
