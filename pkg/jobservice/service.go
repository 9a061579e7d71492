// Package jobservice contains the clients used to talk to the job execution service under test.
//
// Two implementations of Service are provided: BatchService, which talks to AWS Batch, and
// SimulatedService, an in-memory service used for dry runs and tests.
package jobservice

import (
	"context"

	"github.com/G-Research/jobbench/pkg/client/domain"
)

// SubmitRequest asks the service to run one job.
type SubmitRequest struct {
	JobName       string
	JobQueue      string
	JobDefinition string
	Parameters    map[string]string
	Tags          map[string]string
}

// SubmitResponse identifies a job accepted by the service.
type SubmitResponse struct {
	JobId   string
	JobName string
}

// Service is the job execution service. Implementations must be safe for concurrent use.
type Service interface {
	// Submit submits a single job.
	Submit(ctx context.Context, request *SubmitRequest) (*SubmitResponse, error)
	// DescribeMany returns the current status of the given jobs. Jobs the service doesn't know about
	// are omitted from the result.
	DescribeMany(ctx context.Context, jobIds []string) ([]domain.JobStatusObservation, error)
}
