package service

import (
	"time"

	"github.com/99minutos/dropoff-location/internal/core/domain"
)

// stopper is the part of *time.Timer the feedback banner needs.
type stopper interface {
	Stop() bool
}

// afterFunc schedules f after d. time.AfterFunc in production; tests inject
// a manual scheduler.
type afterFunc func(d time.Duration, f func()) stopper

func realAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// Feedback holds at most one visible message and clears it after a fixed
// lifetime. A newer message cancels the timer of the previous one.
type Feedback struct {
	lifetime time.Duration
	after    afterFunc
	current  *domain.FeedbackMessage
	gen      uint64
	timer    stopper
}

func NewFeedback(lifetime time.Duration) *Feedback {
	return newFeedback(lifetime, realAfterFunc)
}

func newFeedback(lifetime time.Duration, after afterFunc) *Feedback {
	if lifetime <= 0 {
		lifetime = domain.DefaultFeedbackLifetime
	}
	return &Feedback{lifetime: lifetime, after: after}
}

// Current returns the visible message, or nil.
func (f *Feedback) Current() *domain.FeedbackMessage {
	if f.current == nil {
		return nil
	}
	msg := *f.current
	return &msg
}

// Show makes msg the visible message. When its lifetime elapses expire is
// called with the generation of this message; the caller hands that
// generation back to Expire.
func (f *Feedback) Show(msg domain.FeedbackMessage, expire func(gen uint64)) {
	if f.timer != nil {
		f.timer.Stop()
	}
	f.gen++
	gen := f.gen
	f.current = &msg
	f.timer = f.after(f.lifetime, func() { expire(gen) })
}

// Expire clears the message of generation gen. An expiry that lost the race
// against a newer Show is ignored.
func (f *Feedback) Expire(gen uint64) bool {
	if gen != f.gen || f.current == nil {
		return false
	}
	f.current = nil
	f.timer = nil
	return true
}

// Dismiss clears the visible message immediately.
func (f *Feedback) Dismiss() {
	if f.timer != nil {
		f.timer.Stop()
	}
	f.gen++
	f.current = nil
	f.timer = nil
}
