package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/dropoff-location/internal/api/metrics"
	"github.com/99minutos/dropoff-location/internal/core/domain"
	"github.com/99minutos/dropoff-location/internal/core/ports"
)

const (
	msgSendSuccess   = "Location fetched and sent successfully!"
	msgSendFailure   = "Failed to send location: %s"
	msgAcquireFailed = "Failed to get location: %s"
)

// Coordinator arms, triggers and settles writes of acquired positions to the
// persistence collaborator. Like Acquirer it is driven only from the reporter
// loop; Write is the one method that runs on another goroutine.
type Coordinator struct {
	writer  ports.LocationWriter
	log     zerolog.Logger
	state   domain.SubmissionState
	outcome domain.SubmissionState
}

func NewCoordinator(writer ports.LocationWriter, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		writer: writer,
		log:    log,
		state:  domain.SubmissionState{Status: domain.SubmissionUnarmed},
	}
}

// State returns the current submission state.
func (c *Coordinator) State() domain.SubmissionState { return c.state }

// Outcome returns the result of the last finished write (succeeded or
// failed), or the zero value if none has finished yet.
func (c *Coordinator) Outcome() domain.SubmissionState { return c.outcome }

// InFlight reports whether a write is currently running.
func (c *Coordinator) InFlight() bool { return c.state.Status == domain.SubmissionInFlight }

// Arm records the intent to submit the next resolved position. It is a no-op
// while a write is in flight.
func (c *Coordinator) Arm() {
	if c.InFlight() {
		return
	}
	c.state = domain.SubmissionState{Status: domain.SubmissionArmed}
}

// Evaluate applies the trigger rule: when armed, not in flight and the
// acquisition is resolved, it moves to in flight and returns the position to
// write. Evaluate is idempotent; calling it again before Complete returns
// false.
func (c *Coordinator) Evaluate(acq domain.AcquisitionState) (domain.Position, bool) {
	if c.state.Status != domain.SubmissionArmed || !acq.Resolved() || acq.Position == nil {
		return domain.Position{}, false
	}
	c.state = domain.SubmissionState{Status: domain.SubmissionInFlight}
	c.log.Info().
		Float64("latitude", acq.Position.Latitude).
		Float64("longitude", acq.Position.Longitude).
		Msg("sending location")
	return *acq.Position, true
}

// Write performs the persistence call and reports its error, if any.
func (c *Coordinator) Write(ctx context.Context, pos domain.Position) error {
	start := time.Now()
	err := c.writer.Save(ctx, pos)
	metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
	return err
}

// Complete settles the in-flight write and returns the feedback to show.
// Either way the arming is consumed and the state returns to unarmed; the
// outcome stays available through Outcome.
func (c *Coordinator) Complete(err error) domain.FeedbackMessage {
	var fb domain.FeedbackMessage
	if err != nil {
		c.outcome = domain.SubmissionState{Status: domain.SubmissionFailed, Reason: err.Error()}
		fb = domain.ErrorFeedback(fmt.Sprintf(msgSendFailure, err.Error()))
		metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
		c.log.Error().Err(err).Msg("failed to send location")
	} else {
		c.outcome = domain.SubmissionState{Status: domain.SubmissionSucceeded}
		fb = domain.SuccessFeedback(msgSendSuccess)
		metrics.SubmissionsTotal.WithLabelValues("succeeded").Inc()
		c.log.Info().Msg("location sent")
	}
	c.state = domain.SubmissionState{Status: domain.SubmissionUnarmed}
	return fb
}

// Abandon consumes an arming whose acquisition failed. It returns false when
// nothing was armed.
func (c *Coordinator) Abandon(acq domain.AcquisitionState) (domain.FeedbackMessage, bool) {
	if c.state.Status != domain.SubmissionArmed || acq.Status != domain.AcquisitionFailed {
		return domain.FeedbackMessage{}, false
	}
	c.outcome = domain.SubmissionState{Status: domain.SubmissionFailed, Reason: acq.Reason()}
	c.state = domain.SubmissionState{Status: domain.SubmissionUnarmed}
	metrics.SubmissionsTotal.WithLabelValues("abandoned").Inc()
	return domain.ErrorFeedback(fmt.Sprintf(msgAcquireFailed, acq.Reason())), true
}
