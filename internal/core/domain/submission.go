package domain

import "fmt"

// SubmissionStatus is the lifecycle of the user's intent to send a position.
type SubmissionStatus string

const (
	SubmissionUnarmed   SubmissionStatus = "unarmed"
	SubmissionArmed     SubmissionStatus = "armed"
	SubmissionInFlight  SubmissionStatus = "in_flight"
	SubmissionSucceeded SubmissionStatus = "succeeded"
	SubmissionFailed    SubmissionStatus = "failed"
)

// SubmissionState is owned by the submission coordinator.
type SubmissionState struct {
	Status SubmissionStatus
	Reason string // set when Status is failed
}

// Terminal reports whether the state is the outcome of a finished write.
func (s SubmissionState) Terminal() bool {
	return s.Status == SubmissionSucceeded || s.Status == SubmissionFailed
}

// PersistenceError wraps a failed write with the collaborator's message.
type PersistenceError struct {
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "persistence failure"
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError builds a PersistenceError from a formatted message.
func NewPersistenceError(err error, format string, args ...any) *PersistenceError {
	return &PersistenceError{Message: fmt.Sprintf(format, args...), Err: err}
}
