package jobbencherrors

import (
	"context"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestExitCodeFromError(t *testing.T) {
	tests := map[string]struct {
		err      error
		expected int
	}{
		"nil":                   {nil, ExitOK},
		"plain":                 {errors.New("boom"), ExitFailure},
		"configuration":         {&ErrConfiguration{Field: "jobQueue"}, ExitConfiguration},
		"wrapped configuration": {errors.Wrap(&ErrConfiguration{Field: "jobQueue"}, "startup"), ExitConfiguration},
		"invalid argument":      {errors.WithStack(&ErrInvalidArgument{Name: "count", Value: 0}), ExitConfiguration},
		"multierror":            {multierror.Append(nil, &ErrConfiguration{Field: "a"}, errors.New("b")), ExitConfiguration},
		"cancelled":             {errors.WithStack(context.Canceled), ExitInterrupted},
		"submission":            {&ErrSubmission{JobName: "j", Err: errors.New("throttled")}, ExitFailure},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExitCodeFromError(tc.err))
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("throttled")
	assert.ErrorIs(t, &ErrSubmission{JobName: "j", Err: cause}, cause)
	assert.ErrorIs(t, &ErrPollTransient{Cycle: 3, Err: cause}, cause)
	assert.ErrorIs(t, &ErrRecordParse{Path: "a.json", Err: cause}, cause)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `invalid configuration for "jobQueue"; a job queue is required`,
		(&ErrConfiguration{Field: "jobQueue", Message: "a job queue is required"}).Error())
	assert.Equal(t, `invalid configuration value -1 for "maxConcurrency"`,
		(&ErrConfiguration{Field: "maxConcurrency", Value: -1}).Error())
	assert.Equal(t, "poll cycle 2 failed: throttled",
		(&ErrPollTransient{Cycle: 2, Err: errors.New("throttled")}).Error())
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, `resource "arn" of type "task" does not exist`, (&ErrNotFound{Type: "task", Value: "arn"}).Error())
	assert.Equal(t, `resource "arn" does not exist; gone`, (&ErrNotFound{Value: "arn", Message: "gone"}).Error())
}
