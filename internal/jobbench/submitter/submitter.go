package submitter

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
	"github.com/G-Research/jobbench/internal/jobbench/metrics"
	"github.com/G-Research/jobbench/pkg/client/domain"
)

const DefaultNamePrefix = "concurrent-test"

// Submitter fans a batch of submissions out over a bounded pool of workers.
type Submitter struct {
	Client *JobClient
	// Job names are <NamePrefix>-job<index>-<unix time>.
	NamePrefix string
	Clock      clock.PassiveClock
	// Optional.
	Metrics *metrics.Metrics
}

// Batch is the collected result of SubmitBatch. Outcomes are in completion order.
type Batch struct {
	StartTime      time.Time
	Elapsed        time.Duration
	MaxConcurrency int
	Outcomes       []*domain.JobSubmissionOutcome
}

func (b *Batch) Succeeded() int {
	n := 0
	for _, outcome := range b.Outcomes {
		if outcome.Succeeded() {
			n++
		}
	}
	return n
}

// Result converts the batch into its persisted form.
func (b *Batch) Result(runId, jobQueue, jobDefinition string) *domain.BatchResult {
	result := domain.NewBatchResult(runId, b.StartTime, jobQueue, jobDefinition, b.Outcomes)
	result.MaxConcurrency = b.MaxConcurrency
	result.ElapsedSeconds = b.Elapsed.Seconds()
	return result
}

// SubmitBatch submits count jobs with at most maxConcurrency submit calls in flight.
// A failed submission becomes a FAILED_TO_SUBMIT outcome and never stops the others, so the batch
// always holds exactly count outcomes. Only invalid arguments are returned as errors.
func (s *Submitter) SubmitBatch(ctx context.Context, count int, params domain.JobParameters, maxConcurrency int) (*Batch, error) {
	if count < 1 {
		return nil, errors.WithStack(&jobbencherrors.ErrInvalidArgument{
			Name:    "count",
			Value:   count,
			Message: "at least one job must be submitted",
		})
	}
	if maxConcurrency < 1 {
		return nil, errors.WithStack(&jobbencherrors.ErrInvalidArgument{
			Name:    "maxConcurrency",
			Value:   maxConcurrency,
			Message: "at least one worker is required",
		})
	}
	if err := params.Validate(); err != nil {
		return nil, errors.WithStack(&jobbencherrors.ErrConfiguration{
			Field:   "parameters",
			Message: err.Error(),
		})
	}
	prefix := s.NamePrefix
	if prefix == "" {
		prefix = DefaultNamePrefix
	}

	log.Infof("Submitting %d jobs to queue %s with %d workers", count, s.Client.JobQueue, maxConcurrency)
	sink := newOutcomeSink(count)
	start := s.Clock.Now()

	g := &errgroup.Group{}
	g.SetLimit(maxConcurrency)
	for i := 1; i <= count; i++ {
		jobName := domain.JobName(prefix, i, s.Clock.Now())
		// Blocks until a worker is free.
		g.Go(func() error {
			outcome, err := s.Client.Submit(ctx, jobName, params)
			s.report(outcome, err)
			sink.Add(outcome)
			return nil
		})
	}
	// Workers never return errors.
	_ = g.Wait()

	batch := &Batch{
		StartTime:      start,
		Elapsed:        s.Clock.Since(start),
		MaxConcurrency: maxConcurrency,
		Outcomes:       sink.GetAll(),
	}
	s.summarise(batch)
	return batch, nil
}

func (s *Submitter) report(outcome *domain.JobSubmissionOutcome, err error) {
	if s.Metrics != nil {
		s.Metrics.RecordSubmission(time.Duration(outcome.SubmitDuration*float64(time.Second)), outcome.Succeeded())
	}
	logger := log.WithField("jobName", outcome.JobName)
	if err != nil {
		logger.WithError(err).Warnf("Failed to submit job after %.3fs", outcome.SubmitDuration)
		return
	}
	logger.WithField("jobId", outcome.JobId).Infof("Submitted job in %.3fs", outcome.SubmitDuration)
}

func (s *Submitter) summarise(batch *Batch) {
	if s.Metrics != nil {
		s.Metrics.RecordBatch(batch.Elapsed)
	}
	succeeded := batch.Succeeded()
	total := len(batch.Outcomes)
	log.Infof(
		"Submitted batch of %d jobs in %.2fs: %d succeeded, %d failed, %.3fs per job on average",
		total, batch.Elapsed.Seconds(), succeeded, total-succeeded, batch.Elapsed.Seconds()/float64(total),
	)
}

// outcomeSink collects outcomes from concurrent workers in the order they are added.
type outcomeSink struct {
	outcomes []*domain.JobSubmissionOutcome
	mutex    sync.Mutex
}

func newOutcomeSink(capacity int) *outcomeSink {
	return &outcomeSink{outcomes: make([]*domain.JobSubmissionOutcome, 0, capacity)}
}

func (s *outcomeSink) Add(outcome *domain.JobSubmissionOutcome) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.outcomes = append(s.outcomes, outcome)
}

func (s *outcomeSink) GetAll() []*domain.JobSubmissionOutcome {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]*domain.JobSubmissionOutcome{}, s.outcomes...)
}
