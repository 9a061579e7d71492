package submitter

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/clock"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
	"github.com/G-Research/jobbench/internal/jobbench/metrics"
	"github.com/G-Research/jobbench/pkg/client/domain"
	"github.com/G-Research/jobbench/pkg/jobservice"
)

// fakeService rejects the jobs whose index is in failIndices and tracks how many calls are in flight.
type fakeService struct {
	failIndices map[int]bool
	delay       time.Duration
	inFlight    int32
	maxInFlight int32
	mu          sync.Mutex
	requests    []*jobservice.SubmitRequest
}

func (f *fakeService) Submit(_ context.Context, request *jobservice.SubmitRequest) (*jobservice.SubmitResponse, error) {
	current := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		observed := atomic.LoadInt32(&f.maxInFlight)
		if current <= observed || atomic.CompareAndSwapInt32(&f.maxInFlight, observed, current) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.requests = append(f.requests, request)
	f.mu.Unlock()

	index, _ := domain.JobIndex(request.JobName)
	if f.failIndices[index] {
		return nil, errors.Errorf("rejected job %d", index)
	}
	return &jobservice.SubmitResponse{JobId: "id-" + request.JobName, JobName: request.JobName}, nil
}

func (f *fakeService) DescribeMany(context.Context, []string) ([]domain.JobStatusObservation, error) {
	return nil, nil
}

func newSubmitter(service jobservice.Service, c clock.PassiveClock) *Submitter {
	return &Submitter{
		Client: &JobClient{
			Service:       service,
			JobQueue:      "queue",
			JobDefinition: "definition",
			Clock:         c,
		},
		Clock: c,
	}
}

func TestSubmitBatch_AllSucceed(t *testing.T) {
	service := &fakeService{}
	submitter := newSubmitter(service, clock.RealClock{})

	batch, err := submitter.SubmitBatch(context.Background(), 5, domain.JobParameters{CountdownSeconds: 30}, 2)
	require.NoError(t, err)
	require.Len(t, batch.Outcomes, 5)
	assert.Equal(t, 5, batch.Succeeded())
	assert.Equal(t, 2, batch.MaxConcurrency)

	for _, outcome := range batch.Outcomes {
		assert.NoError(t, outcome.Validate())
		assert.Equal(t, "id-"+outcome.JobName, outcome.JobId)
		assert.Equal(t, 30, outcome.CountdownSeconds)
		assert.Regexp(t, `^concurrent-test-job00[1-5]-\d+$`, outcome.JobName)
	}
	for _, request := range service.requests {
		assert.Equal(t, "30", request.Parameters[domain.CountdownSecondsParameter])
		assert.Equal(t, "queue", request.JobQueue)
		assert.Equal(t, "definition", request.JobDefinition)
	}
}

func TestSubmitBatch_FailedSubsetRegardlessOfConcurrency(t *testing.T) {
	failIndices := map[int]bool{2: true, 3: true, 7: true, 11: true}
	for _, maxConcurrency := range []int{1, 2, 5, 12, 50} {
		t.Run(fmt.Sprintf("maxConcurrency=%d", maxConcurrency), func(t *testing.T) {
			submitter := newSubmitter(&fakeService{failIndices: failIndices}, clock.RealClock{})
			batch, err := submitter.SubmitBatch(context.Background(), 12, domain.DefaultJobParameters(), maxConcurrency)
			require.NoError(t, err)
			require.Len(t, batch.Outcomes, 12)

			failed := map[int]bool{}
			for _, outcome := range batch.Outcomes {
				require.NoError(t, outcome.Validate())
				index, ok := domain.JobIndex(outcome.JobName)
				require.True(t, ok)
				if outcome.Status == domain.StatusFailedToSubmit {
					failed[index] = true
					assert.Contains(t, outcome.Error, fmt.Sprintf("rejected job %d", index))
				}
			}
			assert.Equal(t, failIndices, failed)

			result := batch.Result("run", "queue", "definition")
			assert.Equal(t, 8, result.SuccessfulJobs)
			assert.Equal(t, 4, result.FailedJobs)
			assert.Equal(t, result.TotalJobs, result.SuccessfulJobs+result.FailedJobs)
			assert.NoError(t, result.Validate())
		})
	}
}

func TestSubmitBatch_BoundsConcurrency(t *testing.T) {
	service := &fakeService{delay: 5 * time.Millisecond}
	submitter := newSubmitter(service, clock.RealClock{})

	batch, err := submitter.SubmitBatch(context.Background(), 40, domain.DefaultJobParameters(), 4)
	require.NoError(t, err)
	assert.Len(t, batch.Outcomes, 40)
	assert.LessOrEqual(t, atomic.LoadInt32(&service.maxInFlight), int32(4))
	assert.Greater(t, atomic.LoadInt32(&service.maxInFlight), int32(1))
}

func TestSubmitBatch_UniqueNames(t *testing.T) {
	fakeClock := clocktesting.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	submitter := newSubmitter(&fakeService{}, fakeClock)

	batch, err := submitter.SubmitBatch(context.Background(), 10000, domain.DefaultJobParameters(), 64)
	require.NoError(t, err)
	require.Len(t, batch.Outcomes, 10000)

	names := make(map[string]bool, 10000)
	for _, outcome := range batch.Outcomes {
		names[outcome.JobName] = true
	}
	assert.Len(t, names, 10000)
}

func TestSubmitBatch_SubmissionOrderRecoverable(t *testing.T) {
	submitter := newSubmitter(&fakeService{}, clock.RealClock{})
	batch, err := submitter.SubmitBatch(context.Background(), 20, domain.DefaultJobParameters(), 8)
	require.NoError(t, err)

	ordered := batch.Result("", "queue", "definition").InSubmissionOrder()
	for i, outcome := range ordered {
		index, _ := domain.JobIndex(outcome.JobName)
		assert.Equal(t, i+1, index)
	}
}

func TestSubmitBatch_InvalidArguments(t *testing.T) {
	submitter := newSubmitter(&fakeService{}, clock.RealClock{})
	tests := map[string]struct {
		count          int
		maxConcurrency int
		params         domain.JobParameters
	}{
		"no jobs":            {0, 1, domain.DefaultJobParameters()},
		"no workers":         {1, 0, domain.DefaultJobParameters()},
		"negative countdown": {1, 1, domain.JobParameters{CountdownSeconds: -1}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			batch, err := submitter.SubmitBatch(context.Background(), tc.count, tc.params, tc.maxConcurrency)
			assert.Nil(t, batch)
			assert.Equal(t, jobbencherrors.ExitConfiguration, jobbencherrors.ExitCodeFromError(err))
		})
	}
}

func TestSubmitBatch_CancelledContextStillYieldsEveryOutcome(t *testing.T) {
	service := jobservice.NewSimulatedService(jobservice.SimulatedConfig{}, clocktesting.NewFakeClock(time.Now()))
	submitter := newSubmitter(service, clock.RealClock{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := submitter.SubmitBatch(ctx, 6, domain.DefaultJobParameters(), 3)
	require.NoError(t, err)
	require.Len(t, batch.Outcomes, 6)
	assert.Equal(t, 0, batch.Succeeded())
}

func TestSubmitBatch_RecordsMetrics(t *testing.T) {
	m := metrics.NewDefault()
	submitter := newSubmitter(&fakeService{failIndices: map[int]bool{1: true}}, clock.RealClock{})
	submitter.Metrics = m

	_, err := submitter.SubmitBatch(context.Background(), 3, domain.DefaultJobParameters(), 3)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(m.Registry(), "jobbench_submissions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestJobClient_SendsTags(t *testing.T) {
	service := &fakeService{}
	client := &JobClient{Service: service, JobQueue: "q", JobDefinition: "d", Tags: RunTags("01hqz3d8rq"), Clock: clock.RealClock{}}

	_, err := client.Submit(context.Background(), "t-job001-1", domain.DefaultJobParameters())
	require.NoError(t, err)
	require.Len(t, service.requests, 1)
	assert.Equal(t, map[string]string{"LaunchedBy": "jobbench", "RunId": "01hqz3d8rq"}, service.requests[0].Tags)
}

func TestJobClient_MissingJobId(t *testing.T) {
	client := &JobClient{Service: missingIdService{}, JobQueue: "q", JobDefinition: "d", Clock: clock.RealClock{}}
	outcome, err := client.Submit(context.Background(), "job", domain.DefaultJobParameters())

	var submissionErr *jobbencherrors.ErrSubmission
	require.True(t, errors.As(err, &submissionErr))
	assert.Equal(t, "job", submissionErr.JobName)
	assert.Equal(t, domain.StatusFailedToSubmit, outcome.Status)
	assert.NoError(t, outcome.Validate())
}

type missingIdService struct{}

func (missingIdService) Submit(_ context.Context, request *jobservice.SubmitRequest) (*jobservice.SubmitResponse, error) {
	return &jobservice.SubmitResponse{JobName: request.JobName}, nil
}

func (missingIdService) DescribeMany(context.Context, []string) ([]domain.JobStatusObservation, error) {
	return nil, nil
}
