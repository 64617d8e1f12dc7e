package extract

import (
	"errors"
	"fmt"

	"tubetap/internal/provider"
)

// ErrRunTimeout is returned when a run never reaches a terminal state within
// the configured wait budget. No result-set fetch is attempted.
var ErrRunTimeout = errors.New("extraction run did not finish within the wait budget")

// ErrNoResults is returned when a succeeded run produced an empty or absent
// result set.
var ErrNoResults = errors.New("extraction run produced no results")

// StartError reports that a runner rejected the job submission or returned
// no usable run id.
type StartError struct {
	Actor string
	Err   error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("starting actor %s: %v", e.Actor, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// RunFailedError reports a run that reached a failing terminal state.
type RunFailedError struct {
	Status provider.Status
}

func (e *RunFailedError) Error() string {
	return fmt.Sprintf("extraction run ended with status %s", e.Status)
}

// AttemptError records the failure of one actor attempt.
type AttemptError struct {
	Actor string
	Err   error
}

// AllAttemptsFailedError carries the last error per attempted actor after
// the fallback policy is exhausted.
type AllAttemptsFailedError struct {
	Attempts []AttemptError
}

func (e *AllAttemptsFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return "no extraction attempts were made"
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("all %d extraction attempts failed, last (%s): %v",
		len(e.Attempts), last.Actor, last.Err)
}

func (e *AllAttemptsFailedError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}
