package client

import (
	"context"

	"k8s.io/utils/clock"

	"github.com/G-Research/jobbench/pkg/jobservice"
)

func WithJobService(ctx context.Context, details *ServiceConnectionDetails, clock clock.Clock, action func(jobservice.Service) error) error {
	service, err := CreateJobService(ctx, details, clock)
	if err != nil {
		return err
	}
	return action(service)
}
