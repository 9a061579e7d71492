package jobbench

import (
	"context"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/G-Research/jobbench/internal/jobbench/configuration"
	"github.com/G-Research/jobbench/internal/jobbench/harness"
	"github.com/G-Research/jobbench/pkg/client/domain"
)

// ErrTaskTestFailed is returned by Harness when the task couldn't be launched or didn't succeed.
var ErrTaskTestFailed = errors.New("task launch test failed")

// Harness launches one task through the task-launch gateway and, unless config.NoWait is set, waits
// a bounded time for it to stop.
func (a *App) Harness(ctx context.Context, config configuration.HarnessConfig) (*harness.Report, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return a.runHarness(ctx, config, harness.NewGatewayClient(config.ExecuteUrl, config.StatusUrl))
}

func (a *App) runHarness(ctx context.Context, config configuration.HarnessConfig, gateway harness.Gateway) (*harness.Report, error) {
	h := &harness.Harness{
		Gateway: gateway,
		Waiter: &harness.Waiter{
			Gateway:        gateway,
			Clock:          a.Clock,
			MaxWait:        config.MaxWait,
			Interval:       config.Interval,
			StatusAttempts: config.StatusAttempts,
		},
		Clock: a.Clock,
	}
	request := &domain.LaunchTaskRequest{ExeArgs: config.ExeArgs, ClusterName: config.ClusterName}
	report, runErr := h.Run(ctx, request, config.ClusterName, !config.NoWait)
	report.Print(a.Out)

	if config.JUnitFile != "" {
		if err := writeJUnit(report, config.JUnitFile); err != nil {
			return report, err
		}
		log.WithField("file", config.JUnitFile).Info("Saved JUnit report")
	}
	if runErr != nil {
		return report, runErr
	}
	if !report.Passed() {
		return report, errors.WithStack(ErrTaskTestFailed)
	}
	return report, nil
}

func writeJUnit(report *harness.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := report.WriteJUnit(f); err != nil {
		_ = f.Close()
		return err
	}
	return errors.WithStack(f.Close())
}
