package jobservice

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"k8s.io/utils/clock"

	"github.com/G-Research/jobbench/pkg/client/domain"
)

// SimulatedConfig controls the behaviour of SimulatedService.
type SimulatedConfig struct {
	// How long each submit call takes.
	SubmitLatency time.Duration `validate:"gte=0"`
	// Fraction of submit calls that are rejected, in [0, 1].
	SubmitFailureRate float64 `validate:"gte=0,lte=1"`
	// How long a job spends in each status before RUNNING.
	StatusDwell time.Duration `validate:"gte=0"`
	// Fraction of jobs that end FAILED rather than SUCCEEDED, in [0, 1].
	JobFailureRate float64 `validate:"gte=0,lte=1"`
	// Seeds the random decisions, so runs can be reproduced.
	Seed int64
}

var preRunningStatuses = []domain.JobStatus{domain.Submitted, domain.Pending, domain.Runnable, domain.Starting}

type simulatedJob struct {
	id          string
	name        string
	submittedAt time.Time
	runFor      time.Duration
	fails       bool
}

// SimulatedService is an in-memory job service. Jobs move through the status vocabulary as the clock
// advances: StatusDwell in each status up to STARTING, then RUNNING for the job's countdownSeconds
// parameter, then SUCCEEDED or FAILED.
type SimulatedService struct {
	config  SimulatedConfig
	clock   clock.Clock
	mu      sync.Mutex
	random  *rand.Rand
	entropy *ulid.MonotonicEntropy
	jobs    map[string]*simulatedJob
}

func NewSimulatedService(config SimulatedConfig, clock clock.Clock) *SimulatedService {
	return &SimulatedService{
		config:  config,
		clock:   clock,
		random:  rand.New(rand.NewSource(config.Seed)),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(config.Seed)), 0),
		jobs:    make(map[string]*simulatedJob),
	}
}

func (s *SimulatedService) Submit(ctx context.Context, request *SubmitRequest) (*SubmitResponse, error) {
	if s.config.SubmitLatency > 0 {
		select {
		case <-ctx.Done():
			return nil, errors.WithStack(ctx.Err())
		case <-s.clock.After(s.config.SubmitLatency):
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	if request.JobQueue == "" || request.JobDefinition == "" {
		return nil, errors.New("ClientException: jobQueue and jobDefinition are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.random.Float64() < s.config.SubmitFailureRate {
		return nil, errors.Errorf("TooManyRequestsException: rate exceeded for job %s", request.JobName)
	}
	now := s.clock.Now()
	job := &simulatedJob{
		id:          strings.ToLower(ulid.MustNew(ulid.Timestamp(now), s.entropy).String()),
		name:        request.JobName,
		submittedAt: now,
		runFor:      runDuration(request.Parameters, s.config.StatusDwell),
		fails:       s.random.Float64() < s.config.JobFailureRate,
	}
	s.jobs[job.id] = job
	return &SubmitResponse{JobId: job.id, JobName: job.name}, nil
}

func (s *SimulatedService) DescribeMany(ctx context.Context, jobIds []string) ([]domain.JobStatusObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	result := make([]domain.JobStatusObservation, 0, len(jobIds))
	for _, id := range jobIds {
		job, ok := s.jobs[id]
		if !ok {
			continue
		}
		result = append(result, s.observe(job, now))
	}
	return result, nil
}

// Jobs returns the number of jobs accepted so far.
func (s *SimulatedService) Jobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *SimulatedService) observe(job *simulatedJob, now time.Time) domain.JobStatusObservation {
	observation := domain.JobStatusObservation{JobId: job.id, JobName: job.name}
	age := now.Sub(job.submittedAt)
	dwell := s.config.StatusDwell
	preRunning := dwell * time.Duration(len(preRunningStatuses))
	switch {
	case dwell > 0 && age < preRunning:
		observation.LastStatus = preRunningStatuses[int(age/dwell)]
	case age < preRunning+job.runFor:
		observation.LastStatus = domain.Running
	case job.fails:
		observation.LastStatus = domain.Failed
		observation.StatusReason = "Essential container in task exited"
	default:
		observation.LastStatus = domain.Succeeded
	}
	return observation
}

func runDuration(parameters map[string]string, fallback time.Duration) time.Duration {
	seconds, err := strconv.Atoi(parameters[domain.CountdownSecondsParameter])
	if err != nil || seconds < 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
