package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/dropoff-location/internal/api/metrics"
	"github.com/99minutos/dropoff-location/internal/core/domain"
	"github.com/99minutos/dropoff-location/internal/core/ports"
)

const defaultAcquireTimeout = 10 * time.Second

// acquisition is the result of one provider call, tagged with the request
// that produced it.
type acquisition struct {
	ticket   uint64
	position domain.Position
	err      error
}

// Acquirer wraps a Geolocator into a request/response unit with loading and
// error state. It is not safe for concurrent use: Request and Resolve must be
// called from the reporter loop. Fetch only reads immutable fields and runs on
// its own goroutine.
type Acquirer struct {
	geo    ports.Geolocator
	opts   domain.PositionOptions
	log    zerolog.Logger
	state  domain.AcquisitionState
	last   *domain.Position
	ticket uint64
}

// NewAcquirer returns an Acquirer. A nil geolocator means the capability is
// absent and every request fails with domain.ErrUnsupportedCapability.
// Cached positions are never accepted: MaximumAge is always zero.
func NewAcquirer(geo ports.Geolocator, opts domain.PositionOptions, log zerolog.Logger) *Acquirer {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultAcquireTimeout
	}
	opts.MaximumAge = 0
	return &Acquirer{
		geo:   geo,
		opts:  opts,
		log:   log,
		state: domain.AcquisitionState{Status: domain.AcquisitionIdle},
	}
}

// State returns the current acquisition state.
func (a *Acquirer) State() domain.AcquisitionState { return a.state }

// LastPosition returns the most recently resolved position. It survives later
// pending or failed requests so it can stay on display.
func (a *Acquirer) LastPosition() *domain.Position { return a.last }

// Request moves to pending and returns the ticket of the new request. The
// second return is false when the capability is absent; the state is then
// already failed and no provider call must be made. A request issued while
// another is pending supersedes it.
func (a *Acquirer) Request() (uint64, bool) {
	a.ticket++
	if a.geo == nil {
		a.state = domain.AcquisitionState{Status: domain.AcquisitionFailed, Err: domain.ErrUnsupportedCapability}
		metrics.AcquisitionsTotal.WithLabelValues(outcomeLabel(domain.ErrUnsupportedCapability)).Inc()
		return a.ticket, false
	}
	if a.state.Pending() {
		a.log.Debug().Uint64("ticket", a.ticket).Msg("location request restarted")
	}
	a.state = domain.AcquisitionState{Status: domain.AcquisitionPending}
	return a.ticket, true
}

// Fetch performs the provider call for ticket and classifies any failure.
func (a *Acquirer) Fetch(ctx context.Context, ticket uint64) acquisition {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	pos, err := a.geo.CurrentPosition(ctx, a.opts)
	if err != nil {
		return acquisition{ticket: ticket, err: classify(err)}
	}
	return acquisition{ticket: ticket, position: pos}
}

// Resolve applies a fetch result. Results of superseded requests are dropped
// and Resolve reports false.
func (a *Acquirer) Resolve(res acquisition) bool {
	if res.ticket != a.ticket || !a.state.Pending() {
		a.log.Debug().Uint64("ticket", res.ticket).Uint64("current", a.ticket).Msg("stale location result dropped")
		return false
	}

	metrics.AcquisitionsTotal.WithLabelValues(outcomeLabel(res.err)).Inc()

	if res.err != nil {
		a.state = domain.AcquisitionState{Status: domain.AcquisitionFailed, Err: res.err}
		a.log.Warn().Err(res.err).Msg("location request failed")
		return true
	}

	pos := res.position
	a.last = &pos
	a.state = domain.AcquisitionState{Status: domain.AcquisitionResolved, Position: &pos}
	a.log.Info().
		Float64("latitude", pos.Latitude).
		Float64("longitude", pos.Longitude).
		Float64("accuracy", pos.Accuracy).
		Msg("location resolved")
	return true
}

// classify maps a provider error onto permission denied, timeout or a
// generic failure carrying the provider text.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTimeout
	}
	var pe *domain.PositionError
	if errors.As(err, &pe) {
		switch pe.Code {
		case domain.PositionPermissionDenied:
			return domain.ErrPermissionDenied
		case domain.PositionTimeout:
			return domain.ErrTimeout
		}
		return &domain.GenericAcquisitionError{Message: pe.Message}
	}
	return &domain.GenericAcquisitionError{Message: err.Error()}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "resolved"
	case errors.Is(err, domain.ErrUnsupportedCapability):
		return "unsupported"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
