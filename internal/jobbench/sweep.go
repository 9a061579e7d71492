package jobbench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/G-Research/jobbench/internal/jobbench/benchmark"
	"github.com/G-Research/jobbench/internal/jobbench/configuration"
	"github.com/G-Research/jobbench/pkg/client/domain"
	"github.com/G-Research/jobbench/pkg/jobservice"
)

const defaultPlanName = "sweep"

// Sweep runs every batch of the plan in order, saving each into config.OutputDir, then analyzes the
// directory. Runs are saved as <plan>-run<n>-<jobs>jobs.json so that they sort in run order.
func (a *App) Sweep(ctx context.Context, config configuration.SweepConfig) (*benchmark.Analysis, error) {
	plan, err := domain.LoadPlanFile(config.PlanFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(plan); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return nil, errors.WithStack(err)
	}
	name := plan.Name
	if name == "" {
		name = defaultPlanName
	}

	err = a.withJobService(ctx, func(service jobservice.Service) error {
		for i, run := range plan.Runs {
			if i > 0 && plan.Pause > 0 {
				log.Infof("Pausing for %s before the next run", plan.Pause)
				select {
				case <-ctx.Done():
					return errors.WithStack(ctx.Err())
				case <-a.Clock.After(plan.Pause):
				}
			}
			if err := a.sweepRun(ctx, service, config, plan, name, i, run); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a.Analyze(configuration.AnalyzeConfig{ResultsDir: config.OutputDir, Charts: config.Charts})
}

func (a *App) sweepRun(ctx context.Context, service jobservice.Service, config configuration.SweepConfig, plan *domain.LoadTestPlan, name string, i int, run domain.LoadTestRun) error {
	runId, err := a.newRunId()
	if err != nil {
		return err
	}
	m := newMetrics()
	defer pushMetrics(context.Background(), m, config.Metrics, runId)

	log.WithField("runId", runId).Infof("Sweep %s: run %d of %d", name, i+1, len(plan.Runs))
	_, err = a.submit(ctx, service, m, runId, configuration.SubmitConfig{
		JobQueue:      plan.JobQueue,
		JobDefinition: plan.JobDefinition,
		NumJobs:       run.Jobs,
		MaxWorkers:    plan.ConcurrencyFor(run, config.MaxWorkers),
		NamePrefix:    config.NamePrefix,
		Parameters:    plan.ParametersFor(run),
		Output:        filepath.Join(config.OutputDir, fmt.Sprintf("%s-run%02d-%04djobs.json", name, i+1, run.Jobs)),
		Monitor:       config.Monitor,
		Watch:         config.Watch,
	})
	return err
}
