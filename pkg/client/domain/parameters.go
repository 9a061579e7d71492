package domain

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/maps"
)

const (
	CountdownSecondsParameter = "countdownSeconds"
	DefaultCountdownSeconds   = 30
)

// JobParameters are the parameters passed with every job of a batch.
type JobParameters struct {
	// How long the job payload counts down before exiting.
	CountdownSeconds int `yaml:"countdownSeconds" validate:"gte=0"`
	// Passed through to the job definition unchanged.
	ExtraParameters map[string]string `yaml:"extraParameters"`
}

func DefaultJobParameters() JobParameters {
	return JobParameters{CountdownSeconds: DefaultCountdownSeconds}
}

func (p JobParameters) Validate() error {
	if p.CountdownSeconds < 0 {
		return fmt.Errorf("%s must not be negative, got %d", CountdownSecondsParameter, p.CountdownSeconds)
	}
	for key := range p.ExtraParameters {
		if key == "" {
			return fmt.Errorf("extra parameter names must not be empty")
		}
		if key == CountdownSecondsParameter {
			return fmt.Errorf("%s must be set directly rather than as an extra parameter", key)
		}
	}
	return nil
}

// AsMap renders the parameters in the form the job service accepts.
func (p JobParameters) AsMap() map[string]string {
	result := make(map[string]string, len(p.ExtraParameters)+1)
	maps.Copy(result, p.ExtraParameters)
	result[CountdownSecondsParameter] = strconv.Itoa(p.CountdownSeconds)
	return result
}
