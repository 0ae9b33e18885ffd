package domain

import (
	"errors"
	"fmt"
)

// PositionErrorCode distinguishes the ways a platform position request can fail.
type PositionErrorCode int

const (
	PositionPermissionDenied PositionErrorCode = iota + 1
	PositionUnavailable
	PositionTimeout
)

// PositionError is what a geolocation provider reports when it cannot
// deliver a position.
type PositionError struct {
	Code    PositionErrorCode
	Message string
}

func (e *PositionError) Error() string {
	return e.Message
}

// Acquisition failures, classified for user messaging.
var (
	ErrUnsupportedCapability = errors.New("not supported")
	ErrPermissionDenied      = errors.New("location permission denied by user")
	ErrTimeout               = errors.New("location request timed out, please try again")
)

// GenericAcquisitionError carries the provider's own message for failures
// that are neither a refusal nor a timeout.
type GenericAcquisitionError struct {
	Message string
}

func (e *GenericAcquisitionError) Error() string {
	return fmt.Sprintf("geolocation error: %s", e.Message)
}

// AcquisitionStatus is the lifecycle of a single location request.
type AcquisitionStatus string

const (
	AcquisitionIdle     AcquisitionStatus = "idle"
	AcquisitionPending  AcquisitionStatus = "pending"
	AcquisitionResolved AcquisitionStatus = "resolved"
	AcquisitionFailed   AcquisitionStatus = "failed"
)

// AcquisitionState is owned by the location acquirer. Position is set only
// when Status is resolved, Err only when Status is failed.
type AcquisitionState struct {
	Status   AcquisitionStatus
	Position *Position
	Err      error
}

// Reason is the failure text, or "" when the state is not failed.
func (s AcquisitionState) Reason() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

func (s AcquisitionState) Resolved() bool { return s.Status == AcquisitionResolved }
func (s AcquisitionState) Pending() bool  { return s.Status == AcquisitionPending }
