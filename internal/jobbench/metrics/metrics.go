package metrics

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/G-Research/jobbench/pkg/client/domain"
)

const MetricPrefix = "jobbench_"

const (
	outcomeSubmitted = "submitted"
	outcomeFailed    = "failed"
)

// Metrics holds the collectors updated during a run. Collectors are registered on the registry
// passed to New so that each run, and each test, can use its own.
type Metrics struct {
	registry         *prometheus.Registry
	submitDuration   prometheus.Histogram
	submissions      *prometheus.CounterVec
	pollCycles       prometheus.Counter
	pollErrors       prometheus.Counter
	jobsByStatus     *prometheus.GaugeVec
	terminalJobs     *prometheus.CounterVec
	batchElapsedTime prometheus.Gauge
}

func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		submitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricPrefix + "submit_duration_seconds",
			Help:    "Time taken by a single submit call to the job service",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.3, 0.5, 0.75, 1, 1.5, 2, 3, 5, 10},
		}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: MetricPrefix + "submissions_total",
			Help: "Number of submission attempts by outcome",
		}, []string{"outcome"}),
		pollCycles: factory.NewCounter(prometheus.CounterOpts{
			Name: MetricPrefix + "poll_cycles_total",
			Help: "Number of status poll cycles issued by the monitor",
		}),
		pollErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: MetricPrefix + "poll_errors_total",
			Help: "Number of status poll cycles that failed and were retried",
		}),
		jobsByStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricPrefix + "jobs",
			Help: "Number of monitored jobs in each status",
		}, []string{"status"}),
		terminalJobs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: MetricPrefix + "terminal_jobs_total",
			Help: "Number of jobs observed reaching a terminal status",
		}, []string{"status"}),
		batchElapsedTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: MetricPrefix + "batch_elapsed_seconds",
			Help: "Wall-clock time taken to submit the last batch",
		}),
	}
}

// NewDefault returns Metrics backed by a fresh registry.
func NewDefault() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) RecordSubmission(duration time.Duration, submitted bool) {
	outcome := outcomeSubmitted
	if submitted {
		m.submitDuration.Observe(duration.Seconds())
	} else {
		outcome = outcomeFailed
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordBatch(elapsed time.Duration) {
	m.batchElapsedTime.Set(elapsed.Seconds())
}

func (m *Metrics) RecordPoll(err error) {
	m.pollCycles.Inc()
	if err != nil {
		m.pollErrors.Inc()
	}
}

func (m *Metrics) RecordStatusSummary(summary map[domain.JobStatus]int) {
	for _, status := range domain.JobStatuses() {
		m.jobsByStatus.WithLabelValues(string(status)).Set(float64(summary[status]))
	}
}

func (m *Metrics) RecordTerminal(status domain.JobStatus) {
	m.terminalJobs.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Push sends every collected metric to a Prometheus Pushgateway, grouped by run id.
func (m *Metrics) Push(ctx context.Context, url string, runId string) error {
	err := push.New(url, "jobbench").
		Gatherer(m.registry).
		Grouping("run_id", runId).
		PushContext(ctx)
	return errors.Wrapf(err, "could not push metrics to %s", url)
}
