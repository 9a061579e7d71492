package jobservice

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/batch"
	"github.com/pkg/errors"

	"github.com/G-Research/jobbench/pkg/client/domain"
)

// DescribeJobs accepts at most this many job ids per call.
const MaxJobsPerDescribe = 100

// BatchAPI is the subset of the AWS Batch client used by BatchService.
type BatchAPI interface {
	SubmitJob(ctx context.Context, params *batch.SubmitJobInput, optFns ...func(*batch.Options)) (*batch.SubmitJobOutput, error)
	DescribeJobs(ctx context.Context, params *batch.DescribeJobsInput, optFns ...func(*batch.Options)) (*batch.DescribeJobsOutput, error)
}

// BatchService submits jobs to an AWS Batch job queue.
type BatchService struct {
	client BatchAPI
}

func NewBatchService(client BatchAPI) *BatchService {
	return &BatchService{client: client}
}

// NewBatchServiceForRegion builds a BatchService using the default AWS credential chain.
func NewBatchServiceForRegion(ctx context.Context, region string) (*BatchService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "could not load AWS configuration")
	}
	return NewBatchService(batch.NewFromConfig(cfg)), nil
}

func (s *BatchService) Submit(ctx context.Context, request *SubmitRequest) (*SubmitResponse, error) {
	input := &batch.SubmitJobInput{
		JobName:       aws.String(request.JobName),
		JobQueue:      aws.String(request.JobQueue),
		JobDefinition: aws.String(request.JobDefinition),
		Parameters:    request.Parameters,
	}
	if len(request.Tags) > 0 {
		input.Tags = request.Tags
	}
	output, err := s.client.SubmitJob(ctx, input)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &SubmitResponse{
		JobId:   aws.ToString(output.JobId),
		JobName: aws.ToString(output.JobName),
	}, nil
}

// DescribeMany splits jobIds into requests of at most MaxJobsPerDescribe ids.
// If any request fails, the whole call fails.
func (s *BatchService) DescribeMany(ctx context.Context, jobIds []string) ([]domain.JobStatusObservation, error) {
	result := make([]domain.JobStatusObservation, 0, len(jobIds))
	for start := 0; start < len(jobIds); start += MaxJobsPerDescribe {
		end := start + MaxJobsPerDescribe
		if end > len(jobIds) {
			end = len(jobIds)
		}
		output, err := s.client.DescribeJobs(ctx, &batch.DescribeJobsInput{Jobs: jobIds[start:end]})
		if err != nil {
			return nil, errors.WithStack(err)
		}
		for _, job := range output.Jobs {
			result = append(result, domain.JobStatusObservation{
				JobId:        aws.ToString(job.JobId),
				JobName:      aws.ToString(job.JobName),
				LastStatus:   domain.JobStatus(job.Status),
				StatusReason: aws.ToString(job.StatusReason),
			})
		}
	}
	return result, nil
}
