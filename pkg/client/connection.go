package client

import (
	"context"

	"github.com/pkg/errors"
	"k8s.io/utils/clock"

	commonconfig "github.com/G-Research/jobbench/internal/common/config"
	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
	"github.com/G-Research/jobbench/pkg/jobservice"
)

const (
	ServiceBatch     = "batch"
	ServiceSimulated = "simulated"

	DefaultRegion = "us-west-2"
)

// ServiceConnectionDetails selects the job service the load tester talks to.
type ServiceConnectionDetails struct {
	Service   string `validate:"oneof=batch simulated"`
	Region    string
	Simulated jobservice.SimulatedConfig
}

// CreateJobService returns the job service described by details. The clock only drives the
// simulated service.
func CreateJobService(ctx context.Context, details *ServiceConnectionDetails, clock clock.Clock) (jobservice.Service, error) {
	if err := commonconfig.Validate(details); err != nil {
		return nil, err
	}
	switch details.Service {
	case ServiceSimulated:
		return jobservice.NewSimulatedService(details.Simulated, clock), nil
	default:
		if details.Region == "" {
			return nil, errors.WithStack(&jobbencherrors.ErrConfiguration{
				Field:   "region",
				Message: "an AWS region is required for the batch service",
			})
		}
		service, err := jobservice.NewBatchServiceForRegion(ctx, details.Region)
		if err != nil {
			return nil, err
		}
		return service, nil
	}
}
