// Package errors defines the job engine's error taxonomy.
//
// Every error a job or the engine can surface is one of the typed values
// below. Callers distinguish them with the IsXxx helpers (backed by
// errors.As) rather than string matching, the same way the rest of this
// codebase layers typed errors under a single pkg/errors package.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// UserCallableError wraps a panic or error raised from inside a job's
// callable. It is stored on the job and triggers a retry if attempts remain.
type UserCallableError struct {
	JobID string
	Err   error
}

func NewUserCallableError(jobID string, err error) *UserCallableError {
	return &UserCallableError{JobID: jobID, Err: err}
}

func (e *UserCallableError) Error() string {
	return fmt.Sprintf("job %s: callable error: %v", e.JobID, e.Err)
}

func (e *UserCallableError) Unwrap() error { return e.Err }

func IsUserCallableError(err error) bool {
	var target *UserCallableError
	return errors.As(err, &target)
}

// DependencyFailedError is returned when a JobFuture argument resolved to a
// failed or cancelled producer. The consuming job fails without executing
// and is never retried.
type DependencyFailedError struct {
	JobID          string
	ProducerID     string
	ProducerStatus string
}

func NewDependencyFailedError(jobID, producerID, producerStatus string) *DependencyFailedError {
	return &DependencyFailedError{JobID: jobID, ProducerID: producerID, ProducerStatus: producerStatus}
}

func (e *DependencyFailedError) Error() string {
	return fmt.Sprintf("job %s: dependency %s ended in status %q", e.JobID, e.ProducerID, e.ProducerStatus)
}

func IsDependencyFailedError(err error) bool {
	var target *DependencyFailedError
	return errors.As(err, &target)
}

// ConditionError wraps a panic recovered from a Condition's Satisfy method.
// The scheduler treats the tick as "not satisfied" and logs this error; it
// never propagates to the job itself.
type ConditionError struct {
	JobID string
	Err   error
}

func NewConditionError(jobID string, err error) *ConditionError {
	return &ConditionError{JobID: jobID, Err: err}
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("job %s: condition evaluation panicked: %v", e.JobID, e.Err)
}

func IsConditionError(err error) bool {
	var target *ConditionError
	return errors.As(err, &target)
}

// BackendError indicates a backend failed to start a job or lost it
// mid-flight (process died, connection dropped). Recovered is true once one
// automatic recovery attempt has already been spent.
type BackendError struct {
	JobID     string
	Kind      string
	Err       error
	Recovered bool
}

func NewBackendError(jobID, kind string, err error, recovered bool) *BackendError {
	return &BackendError{JobID: jobID, Kind: kind, Err: err, Recovered: recovered}
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("job %s: %s backend error: %v", e.JobID, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func IsBackendError(err error) bool {
	var target *BackendError
	return errors.As(err, &target)
}

// CancelledError is the terminal error stored on a job cancelled by the user
// or the engine.
type CancelledError struct {
	JobID string
}

func NewCancelledError(jobID string) *CancelledError {
	return &CancelledError{JobID: jobID}
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("job %s: cancelled", e.JobID)
}

func IsCancelledError(err error) bool {
	var target *CancelledError
	return errors.As(err, &target)
}

// TimeoutError is returned to a blocking waiter (Job.Wait with a non-zero
// timeout) when its timeout elapses. It never mutates job state.
type TimeoutError struct {
	JobID   string
	Timeout time.Duration
}

func NewTimeoutError(jobID string, timeout time.Duration) *TimeoutError {
	return &TimeoutError{JobID: jobID, Timeout: timeout}
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("job %s: timed out after %s", e.JobID, e.Timeout)
}

func IsTimeoutError(err error) bool {
	var target *TimeoutError
	return errors.As(err, &target)
}

// EngineStateError reports an operation invalid for the engine's current
// lifecycle status, e.g. Submit before Start.
type EngineStateError struct {
	Operation string
	State     string
}

func NewEngineStateError(operation, state string) *EngineStateError {
	return &EngineStateError{Operation: operation, State: state}
}

func (e *EngineStateError) Error() string {
	return fmt.Sprintf("%s: invalid while engine is %s", e.Operation, e.State)
}

func IsEngineStateError(err error) bool {
	var target *EngineStateError
	return errors.As(err, &target)
}

// ResourceNotFoundError is a general not-found error used by storage
// repositories (job snapshot lookups, configuration reads).
type ResourceNotFoundError struct {
	Resource string
	ID       string
}

func NewResourceNotFoundError(resource, id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Resource: resource, ID: id}
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func IsResourceNotFoundError(err error) bool {
	var target *ResourceNotFoundError
	return errors.As(err, &target)
}
