package domain

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// LoadTestPlan describes a sweep: a sequence of batches run one after another against the same
// queue and job definition, typically with increasing job counts.
type LoadTestPlan struct {
	Name           string        `yaml:"name"`
	JobQueue       string        `yaml:"jobQueue"`
	JobDefinition  string        `yaml:"jobDefinition"`
	MaxConcurrency int           `yaml:"maxConcurrency"`
	Parameters     JobParameters `yaml:"parameters"`
	Pause          time.Duration `yaml:"pause"`
	Runs           []LoadTestRun `yaml:"runs"`
}

// LoadTestRun is one batch of a plan. Zero values fall back to the plan's settings.
type LoadTestRun struct {
	Jobs             int  `yaml:"jobs"`
	MaxConcurrency   int  `yaml:"maxConcurrency"`
	CountdownSeconds *int `yaml:"countdownSeconds"`
}

// LoadPlanFile reads a plan from a yaml file.
func LoadPlanFile(path string) (*LoadTestPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	plan := &LoadTestPlan{Parameters: DefaultJobParameters()}
	if err := yaml.UnmarshalStrict(data, plan); err != nil {
		return nil, errors.Wrapf(err, "could not parse plan %s", path)
	}
	return plan, nil
}

func (p *LoadTestPlan) Validate() error {
	if len(p.Runs) == 0 {
		return fmt.Errorf("plan has no runs")
	}
	for i, run := range p.Runs {
		if run.Jobs < 1 {
			return fmt.Errorf("run %d: jobs must be at least 1, got %d", i+1, run.Jobs)
		}
		if run.MaxConcurrency < 0 {
			return fmt.Errorf("run %d: maxConcurrency must not be negative, got %d", i+1, run.MaxConcurrency)
		}
		if run.CountdownSeconds != nil && *run.CountdownSeconds < 0 {
			return fmt.Errorf("run %d: countdownSeconds must not be negative, got %d", i+1, *run.CountdownSeconds)
		}
	}
	if p.Pause < 0 {
		return fmt.Errorf("pause must not be negative, got %s", p.Pause)
	}
	return p.Parameters.Validate()
}

// ParametersFor returns the job parameters of the given run.
func (p *LoadTestPlan) ParametersFor(run LoadTestRun) JobParameters {
	params := p.Parameters
	if run.CountdownSeconds != nil {
		params.CountdownSeconds = *run.CountdownSeconds
	}
	return params
}

// ConcurrencyFor returns the worker pool size of the given run, or fallback if neither the run nor
// the plan sets one.
func (p *LoadTestPlan) ConcurrencyFor(run LoadTestRun, fallback int) int {
	if run.MaxConcurrency > 0 {
		return run.MaxConcurrency
	}
	if p.MaxConcurrency > 0 {
		return p.MaxConcurrency
	}
	return fallback
}
