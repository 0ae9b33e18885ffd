package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/dropoff-location/internal/core/domain"
	"github.com/99minutos/dropoff-location/internal/core/ports"
)

const eventBuffer = 16

// ErrReporterStopped is returned by calls made after Run has returned.
var ErrReporterStopped = errors.New("reporter stopped")

type eventKind int

const (
	evRequest eventKind = iota
	evArm
	evPrimary
	evDismiss
	evAcquired
	evWritten
	evExpired
	evSnapshot
)

type event struct {
	kind     eventKind
	acq      acquisition
	writeErr error
	gen      uint64
	reply    chan Snapshot
}

// ReporterOptions tunes a Reporter. Zero values fall back to defaults.
type ReporterOptions struct {
	AcquireTimeout   time.Duration
	FeedbackLifetime time.Duration

	// LowAccuracy turns off the high accuracy hint sent to the provider.
	LowAccuracy bool

	// OnChange is called on the loop goroutine after every state change. It
	// must not call back into the Reporter.
	OnChange func(Snapshot)
}

// Reporter sequences location acquisition, submission and feedback on a
// single event loop. User calls, provider results, write results and timer
// expiries are all events handled in FIFO order by Run, so the acquirer,
// coordinator and feedback banner need no locking.
type Reporter struct {
	acquirer    *Acquirer
	coordinator *Coordinator
	feedback    *Feedback
	onChange    func(Snapshot)
	log         zerolog.Logger

	events chan event
	done   chan struct{}
}

// NewReporter wires a Reporter. geo may be nil when no geolocation capability
// is available.
func NewReporter(geo ports.Geolocator, writer ports.LocationWriter, opts ReporterOptions, log zerolog.Logger) *Reporter {
	return newReporter(geo, writer, opts, realAfterFunc, log)
}

func newReporter(geo ports.Geolocator, writer ports.LocationWriter, opts ReporterOptions, after afterFunc, log zerolog.Logger) *Reporter {
	return &Reporter{
		acquirer: NewAcquirer(geo, domain.PositionOptions{
			EnableHighAccuracy: !opts.LowAccuracy,
			Timeout:            opts.AcquireTimeout,
		}, log),
		coordinator: NewCoordinator(writer, log),
		feedback:    newFeedback(opts.FeedbackLifetime, after),
		onChange:    opts.OnChange,
		log:         log,
		events:      make(chan event, eventBuffer),
		done:        make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled. It must be called exactly once.
func (r *Reporter) Run(ctx context.Context) error {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-r.events:
			r.handle(ctx, ev)
		}
	}
}

// RequestLocation asks for a fresh position. A request made while another is
// pending supersedes it.
func (r *Reporter) RequestLocation(ctx context.Context) error {
	return r.post(ctx, event{kind: evRequest})
}

// Arm records the intent to send the next resolved position. It does not
// request a location by itself.
func (r *Reporter) Arm(ctx context.Context) error {
	return r.post(ctx, event{kind: evArm})
}

// Submit is the primary action: arm and request a location in one step. It
// is ignored while a request or write is in progress.
func (r *Reporter) Submit(ctx context.Context) error {
	return r.post(ctx, event{kind: evPrimary})
}

// Dismiss hides the feedback banner before its lifetime elapses.
func (r *Reporter) Dismiss(ctx context.Context) error {
	return r.post(ctx, event{kind: evDismiss})
}

// Snapshot returns a copy of the current state.
func (r *Reporter) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := r.post(ctx, event{kind: evSnapshot, reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-r.done:
		return Snapshot{}, ErrReporterStopped
	}
}

func (r *Reporter) post(ctx context.Context, ev event) error {
	select {
	case r.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrReporterStopped
	}
}

// deliver hands an asynchronous result back to the loop, dropping it if the
// loop has already stopped.
func (r *Reporter) deliver(ev event) {
	select {
	case r.events <- ev:
	case <-r.done:
	}
}

func (r *Reporter) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case evSnapshot:
		ev.reply <- r.snapshot()
		return
	case evRequest:
		r.request(ctx)
	case evArm:
		r.coordinator.Arm()
	case evPrimary:
		if r.snapshot().Busy() {
			r.log.Debug().Msg("primary action ignored while busy")
			return
		}
		r.coordinator.Arm()
		r.request(ctx)
	case evDismiss:
		r.feedback.Dismiss()
	case evAcquired:
		if !r.acquirer.Resolve(ev.acq) {
			return
		}
		r.abandonIfFailed()
	case evWritten:
		r.show(r.coordinator.Complete(ev.writeErr))
	case evExpired:
		if !r.feedback.Expire(ev.gen) {
			return
		}
	}

	r.evaluate(ctx)
	r.notify()
}

func (r *Reporter) request(ctx context.Context) {
	ticket, ok := r.acquirer.Request()
	if !ok {
		r.abandonIfFailed()
		return
	}
	go func() {
		r.deliver(event{kind: evAcquired, acq: r.acquirer.Fetch(ctx, ticket)})
	}()
}

// evaluate issues a write when the trigger rule holds. Writes are detached
// from ctx: once issued they run to completion.
func (r *Reporter) evaluate(ctx context.Context) {
	pos, ok := r.coordinator.Evaluate(r.acquirer.State())
	if !ok {
		return
	}
	writeCtx := context.WithoutCancel(ctx)
	go func() {
		r.deliver(event{kind: evWritten, writeErr: r.coordinator.Write(writeCtx, pos)})
	}()
}

func (r *Reporter) abandonIfFailed() {
	if fb, ok := r.coordinator.Abandon(r.acquirer.State()); ok {
		r.show(fb)
	}
}

func (r *Reporter) show(fb domain.FeedbackMessage) {
	r.feedback.Show(fb, func(gen uint64) {
		r.deliver(event{kind: evExpired, gen: gen})
	})
}

func (r *Reporter) notify() {
	if r.onChange != nil {
		r.onChange(r.snapshot())
	}
}

func (r *Reporter) snapshot() Snapshot {
	acq := r.acquirer.State()
	acq.Position = copyPosition(acq.Position)
	return Snapshot{
		Acquisition: acq,
		Submission:  r.coordinator.State(),
		Outcome:     r.coordinator.Outcome(),
		Position:    copyPosition(r.acquirer.LastPosition()),
		Feedback:    r.feedback.Current(),
	}
}
