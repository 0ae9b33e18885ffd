package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/99minutos/dropoff-location/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Geolocator whose calls are answered one by one by the test.
// ---------------------------------------------------------------------------

type geoReply struct {
	pos domain.Position
	err error
}

type scriptedGeolocator struct {
	mu      sync.Mutex
	opts    []domain.PositionOptions
	replies []chan geoReply
}

func (g *scriptedGeolocator) CurrentPosition(ctx context.Context, opts domain.PositionOptions) (domain.Position, error) {
	ch := make(chan geoReply, 1)
	g.mu.Lock()
	g.opts = append(g.opts, opts)
	g.replies = append(g.replies, ch)
	g.mu.Unlock()

	select {
	case r := <-ch:
		return r.pos, r.err
	case <-ctx.Done():
		return domain.Position{}, ctx.Err()
	}
}

func (g *scriptedGeolocator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.replies)
}

func (g *scriptedGeolocator) waitCalls(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return g.calls() >= n }, 2*time.Second, time.Millisecond)
}

// answer replies to the i-th call (0-based).
func (g *scriptedGeolocator) answer(i int, r geoReply) {
	g.mu.Lock()
	ch := g.replies[i]
	g.mu.Unlock()
	ch <- r
}

// instantGeolocator answers every call immediately.
type instantGeolocator struct {
	pos domain.Position
	err error
}

func (g instantGeolocator) CurrentPosition(context.Context, domain.PositionOptions) (domain.Position, error) {
	return g.pos, g.err
}

// ---------------------------------------------------------------------------
// Writer that records every write and optionally blocks on a gate.
// ---------------------------------------------------------------------------

type recordingWriter struct {
	mu    sync.Mutex
	saved []domain.Position
	err   error
	gate  chan struct{} // when non-nil, Save blocks until it is closed
}

func (w *recordingWriter) Save(_ context.Context, pos domain.Position) error {
	w.mu.Lock()
	w.saved = append(w.saved, pos)
	gate := w.gate
	err := w.err
	w.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (w *recordingWriter) writes() []domain.Position {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.Position(nil), w.saved...)
}

// ---------------------------------------------------------------------------
// Manual scheduler for the feedback timer.
// ---------------------------------------------------------------------------

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (m *manualTimer) Stop() bool {
	was := !m.stopped
	m.stopped = true
	return was
}

type manualScheduler struct {
	timers []*manualTimer
}

func (s *manualScheduler) after(d time.Duration, f func()) stopper {
	t := &manualTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}
