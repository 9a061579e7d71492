// Package jobbencherrors contains the error types shared by the load-testing pipeline.
//
// Per-job, per-poll and per-file errors are absorbed where they occur and turned into data or log
// lines; only ErrConfiguration and storage failures are expected to reach the top level.
// ExitCodeFromError maps the errors that do reach the top level to a process exit code.
//
// If several errors occur in one operation (e.g., several result files fail to parse), that
// operation should return a *multierror.Error from github.com/hashicorp/go-multierror.
package jobbencherrors

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// ErrSubmission is returned when a single submit call to the job service fails.
// The coordinator records it as a FAILED_TO_SUBMIT outcome; it never aborts a batch.
type ErrSubmission struct {
	JobName string
	Err     error
}

func (err *ErrSubmission) Error() string {
	return fmt.Sprintf("failed to submit job %s: %s", err.JobName, err.Err)
}

func (err *ErrSubmission) Unwrap() error {
	return err.Err
}

// ErrPollTransient is returned when one poll cycle of the status monitor fails.
// The monitor logs it and retries after the usual interval.
type ErrPollTransient struct {
	Cycle int
	Err   error
}

func (err *ErrPollTransient) Error() string {
	return fmt.Sprintf("poll cycle %d failed: %s", err.Cycle, err.Err)
}

func (err *ErrPollTransient) Unwrap() error {
	return err.Err
}

// ErrRecordParse is returned when a persisted batch record can't be read back.
type ErrRecordParse struct {
	Path string
	Err  error
}

func (err *ErrRecordParse) Error() string {
	return fmt.Sprintf("could not parse batch record %s: %s", err.Path, err.Err)
}

func (err *ErrRecordParse) Unwrap() error {
	return err.Err
}

// ErrConfiguration represents missing or invalid configuration, e.g., no job queue.
// Message is optional and is omitted from the error message if not provided.
type ErrConfiguration struct {
	Field   string      // Name of the configuration key, e.g., "jobQueue"
	Value   interface{} // The value that was provided, if any
	Message string      // An optional explanation
}

func (err *ErrConfiguration) Error() string {
	s := fmt.Sprintf("invalid configuration for %q", err.Field)
	if err.Value != nil && err.Value != "" {
		s = fmt.Sprintf("invalid configuration value %v for %q", err.Value, err.Field)
	}
	if err.Message != "" {
		return s + "; " + err.Message
	}
	return s
}

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the argument, e.g., "maxConcurrency"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %v is invalid for argument %q", err.Value, err.Name)
	}
	return fmt.Sprintf("value %v is invalid for argument %q; %s", err.Value, err.Name, err.Message)
}

// ErrNotFound is a generic error to be returned whenever some resource isn't found.
// Type and Message are optional and are omitted from the error message if not provided.
type ErrNotFound struct {
	Type    string // Resource type, e.g., "task"
	Value   string // Resource name, e.g., a task ARN
	Message string
}

func (err *ErrNotFound) Error() (s string) {
	if err.Type != "" {
		s = fmt.Sprintf("resource %q of type %q does not exist", err.Value, err.Type)
	} else {
		s = fmt.Sprintf("resource %q does not exist", err.Value)
	}
	if err.Message != "" {
		return s + fmt.Sprintf("; %s", err.Message)
	}
	return s
}

// Exit codes returned by the command-line tools.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitInterrupted   = 130
)

// ExitCodeFromError maps error types to process exit codes.
// Uses errors.As to look through the chain of errors.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitOK
	}
	{
		var e *ErrConfiguration
		if errors.As(err, &e) {
			return ExitConfiguration
		}
	}
	{
		var e *ErrInvalidArgument
		if errors.As(err, &e) {
			return ExitConfiguration
		}
	}
	{
		var e *multierror.Error
		if errors.As(err, &e) && len(e.Errors) > 0 {
			return ExitCodeFromError(e.Errors[0])
		}
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	return ExitFailure
}
