package service

import "github.com/99minutos/dropoff-location/internal/core/domain"

const (
	labelAcquiring = "Getting Location..."
	labelSending   = "Sending Location..."
	labelIdle      = "Mark Drop-off Location"
)

// Snapshot is a copy of the reporter state taken on the loop goroutine.
type Snapshot struct {
	Acquisition domain.AcquisitionState
	Submission  domain.SubmissionState
	// Outcome is the result of the last finished write or abandoned arming.
	Outcome domain.SubmissionState
	// Position is the last resolved position; it stays set while a newer
	// request is pending or after a failed one.
	Position *domain.Position
	Feedback *domain.FeedbackMessage
}

// Busy reports whether the primary action is disabled.
func (s Snapshot) Busy() bool {
	return s.Acquisition.Pending() || s.Submission.Status == domain.SubmissionInFlight
}

// ActionLabel is the caption of the primary action.
func (s Snapshot) ActionLabel() string {
	switch {
	case s.Acquisition.Pending():
		return labelAcquiring
	case s.Submission.Status == domain.SubmissionInFlight:
		return labelSending
	default:
		return labelIdle
	}
}

func copyPosition(p *domain.Position) *domain.Position {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
