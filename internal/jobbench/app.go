package jobbench

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/G-Research/jobbench/internal/common/logging"
	"github.com/G-Research/jobbench/internal/jobbench/build"
	"github.com/G-Research/jobbench/internal/jobbench/configuration"
	"github.com/G-Research/jobbench/internal/jobbench/metrics"
	"github.com/G-Research/jobbench/pkg/client"
	"github.com/G-Research/jobbench/pkg/jobservice"
)

type App struct {
	// Parameters passed to the CLI by the user.
	Params *Params
	// Out is used to write the output. Defaults to standard out,
	// but can be overridden in tests to make assertions on the applications's output.
	Out io.Writer
	// Source of randomness for run ids.
	Random io.Reader
	// Drives submit timing, monitor sleeps and harness budgets. Tests use a fake clock.
	Clock clock.Clock
}

// Params struct holds all user-customizable parameters.
// Using a single struct for all CLI commands ensures that all flags are distinct
// and that they can be provided either dynamically on a command line, or
// statically in a config file that's reused between command runs.
type Params struct {
	ServiceConnectionDetails *client.ServiceConnectionDetails
	// Set in tests to bypass ServiceConnectionDetails.
	JobService jobservice.Service
}

// New instantiates an App with default parameters, including standard output,
// a cryptographically secure random source and the real clock.
func New() *App {
	return &App{
		Params: &Params{},
		Out:    os.Stdout,
		Random: rand.Reader,
		Clock:  clock.RealClock{},
	}
}

// Version prints build information (e.g., current git commit) to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
	fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
	fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
	fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)
	return nil
}

func (a *App) withJobService(ctx context.Context, action func(jobservice.Service) error) error {
	if a.Params.JobService != nil {
		return action(a.Params.JobService)
	}
	details := a.Params.ServiceConnectionDetails
	if details == nil {
		details = &client.ServiceConnectionDetails{Service: client.ServiceBatch, Region: client.DefaultRegion}
	}
	return client.WithJobService(ctx, details, a.Clock, action)
}

func (a *App) newRunId() (string, error) {
	id, err := ulid.New(ulid.Timestamp(a.Clock.Now()), a.Random)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return strings.ToLower(id.String()), nil
}

// newMetrics returns collectors on a fresh registry, so that each run pushes only its own samples.
func newMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

// pushMetrics pushes m if a Pushgateway is configured. Failing to push doesn't fail the run.
func pushMetrics(ctx context.Context, m *metrics.Metrics, config configuration.MetricsConfig, runId string) {
	if config.PushUrl == "" {
		return
	}
	if err := m.Push(ctx, config.PushUrl, runId); err != nil {
		logging.WithStacktrace(log.WithField("runId", runId), err).Warn("Failed to push metrics")
		return
	}
	log.WithField("runId", runId).Infof("Pushed metrics to %s", config.PushUrl)
}

// openCompletionLog opens path for appending. The returned close function is never nil.
func openCompletionLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, func() {}, errors.Wrapf(err, "could not open completion log %s", path)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Errorf("Could not close completion log %s", path)
		}
	}, nil
}
