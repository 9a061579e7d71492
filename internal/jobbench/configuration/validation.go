package configuration

import (
	"github.com/hashicorp/go-multierror"

	commonconfig "github.com/G-Research/jobbench/internal/common/config"
	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
	"github.com/G-Research/jobbench/pkg/client/domain"
)

func (c SubmitConfig) Validate() error {
	var result *multierror.Error
	if err := commonconfig.Validate(c); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Parameters.Validate(); err != nil {
		result = multierror.Append(result, &jobbencherrors.ErrConfiguration{Field: "Parameters", Message: err.Error()})
	}
	return result.ErrorOrNil()
}

func (c MonitorConfig) Validate() error {
	return commonconfig.Validate(c)
}

func (c AnalyzeConfig) Validate() error {
	return commonconfig.Validate(c)
}

// Validate checks c and the plan it's run with.
func (c SweepConfig) Validate(plan *domain.LoadTestPlan) error {
	var result *multierror.Error
	if err := commonconfig.Validate(c); err != nil {
		result = multierror.Append(result, err)
	}
	if plan != nil {
		if err := plan.Validate(); err != nil {
			result = multierror.Append(result, &jobbencherrors.ErrConfiguration{Field: "Plan", Value: c.PlanFile, Message: err.Error()})
		}
		if plan.JobQueue == "" {
			result = multierror.Append(result, &jobbencherrors.ErrConfiguration{Field: "Plan.JobQueue", Message: "value is required"})
		}
		if plan.JobDefinition == "" {
			result = multierror.Append(result, &jobbencherrors.ErrConfiguration{Field: "Plan.JobDefinition", Message: "value is required"})
		}
	}
	return result.ErrorOrNil()
}

func (c HarnessConfig) Validate() error {
	var result *multierror.Error
	if err := commonconfig.Validate(c); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Interval > c.MaxWait {
		result = multierror.Append(result, &jobbencherrors.ErrConfiguration{
			Field:   "Interval",
			Value:   c.Interval,
			Message: "must not exceed MaxWait",
		})
	}
	return result.ErrorOrNil()
}
