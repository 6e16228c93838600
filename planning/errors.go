package planning

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/planning/messages"
)

// CycleError is the failure of one planning cycle.
type CycleError struct {
	Code messages.ErrorCode
	Err  error
}

func newCycleError(code messages.ErrorCode, err error) *CycleError {
	return &CycleError{Code: code, Err: err}
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CycleError) Unwrap() error {
	return e.Err
}

// Status renders the error into the header status of an output message.
func (e *CycleError) Status() *messages.Status {
	return &messages.Status{Code: e.Code, Msg: e.Err.Error()}
}

// CodeOf classifies err. A nil error is OK and an unclassified one is a planning failure.
func CodeOf(err error) messages.ErrorCode {
	if err == nil {
		return messages.OK
	}
	var cycleErr *CycleError
	if errors.As(err, &cycleErr) {
		return cycleErr.Code
	}
	return messages.PlanningFailure
}
