package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/dropoff-location/internal/core/domain"
	"github.com/99minutos/dropoff-location/internal/core/ports"
)

var testPosition = domain.Position{Latitude: 1, Longitude: 2, Accuracy: 5, Timestamp: 1000}

func startReporter(t *testing.T, geo ports.Geolocator, w ports.LocationWriter, opts ReporterOptions) *Reporter {
	t.Helper()
	r := NewReporter(geo, w, opts, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = r.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return r
}

func waitFor(t *testing.T, r *Reporter, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	var last Snapshot
	require.Eventually(t, func() bool {
		s, err := r.Snapshot(context.Background())
		if err != nil {
			return false
		}
		last = s
		return cond(s)
	}, 2*time.Second, 2*time.Millisecond)
	return last
}

func snap(t *testing.T, r *Reporter) Snapshot {
	t.Helper()
	s, err := r.Snapshot(context.Background())
	require.NoError(t, err)
	return s
}

func TestReporter_InitialState(t *testing.T) {
	r := startReporter(t, &scriptedGeolocator{}, &recordingWriter{}, ReporterOptions{})

	s := snap(t, r)
	assert.Equal(t, domain.AcquisitionIdle, s.Acquisition.Status)
	assert.Equal(t, domain.SubmissionUnarmed, s.Submission.Status)
	assert.Nil(t, s.Position)
	assert.Nil(t, s.Feedback)
	assert.False(t, s.Busy())
	assert.Equal(t, "Mark Drop-off Location", s.ActionLabel())
}

func TestReporter_UnsupportedCapability(t *testing.T) {
	w := &recordingWriter{}
	r := startReporter(t, nil, w, ReporterOptions{})

	require.NoError(t, r.RequestLocation(context.Background()))

	s := waitFor(t, r, func(s Snapshot) bool { return s.Acquisition.Status == domain.AcquisitionFailed })
	assert.Equal(t, "not supported", s.Acquisition.Reason())
	assert.Nil(t, s.Feedback, "not armed, so no feedback")
	assert.Empty(t, w.writes())
}

func TestReporter_ArmedSuccess(t *testing.T) {
	geo := &scriptedGeolocator{}
	w := &recordingWriter{}
	r := startReporter(t, geo, w, ReporterOptions{})
	ctx := context.Background()

	require.NoError(t, r.Arm(ctx))
	require.NoError(t, r.RequestLocation(ctx))

	s := waitFor(t, r, func(s Snapshot) bool { return s.Acquisition.Pending() })
	assert.Equal(t, "Getting Location...", s.ActionLabel())
	assert.Equal(t, domain.SubmissionArmed, s.Submission.Status)

	geo.waitCalls(t, 1)
	geo.answer(0, geoReply{pos: testPosition})

	s = waitFor(t, r, func(s Snapshot) bool { return s.Outcome.Status == domain.SubmissionSucceeded })
	assert.Equal(t, domain.SubmissionUnarmed, s.Submission.Status)
	require.NotNil(t, s.Feedback)
	assert.Equal(t, domain.SuccessFeedback("Location fetched and sent successfully!"), *s.Feedback)
	require.NotNil(t, s.Position)
	assert.Equal(t, testPosition, *s.Position)
	assert.Equal(t, []domain.Position{testPosition}, w.writes())
}

func TestReporter_PersistenceFailure(t *testing.T) {
	w := &recordingWriter{err: &domain.PersistenceError{Message: "network down"}}
	r := startReporter(t, instantGeolocator{pos: testPosition}, w, ReporterOptions{})

	require.NoError(t, r.Submit(context.Background()))

	s := waitFor(t, r, func(s Snapshot) bool { return s.Outcome.Status == domain.SubmissionFailed })
	assert.Equal(t, "network down", s.Outcome.Reason)
	assert.Equal(t, domain.SubmissionUnarmed, s.Submission.Status)
	require.NotNil(t, s.Feedback)
	assert.Equal(t, domain.FeedbackError, s.Feedback.Kind)
	assert.Contains(t, s.Feedback.Text, "network down")

	// The acquired position stays displayed after the failed write.
	assert.Equal(t, domain.AcquisitionResolved, s.Acquisition.Status)
	require.NotNil(t, s.Position)
	assert.Equal(t, testPosition, *s.Position)
	assert.Len(t, w.writes(), 1)
}

func TestReporter_ResolvedWithoutArmingDoesNotWrite(t *testing.T) {
	w := &recordingWriter{}
	r := startReporter(t, instantGeolocator{pos: testPosition}, w, ReporterOptions{})

	require.NoError(t, r.RequestLocation(context.Background()))

	s := waitFor(t, r, func(s Snapshot) bool { return s.Acquisition.Resolved() })
	assert.Equal(t, domain.SubmissionUnarmed, s.Submission.Status)
	assert.Never(t, func() bool { return len(w.writes()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestReporter_ExactlyOneWritePerArming(t *testing.T) {
	geo := &scriptedGeolocator{}
	w := &recordingWriter{gate: make(chan struct{})}
	r := startReporter(t, geo, w, ReporterOptions{})
	ctx := context.Background()

	require.NoError(t, r.Submit(ctx))
	geo.waitCalls(t, 1)
	geo.answer(0, geoReply{pos: testPosition})

	s := waitFor(t, r, func(s Snapshot) bool { return s.Submission.Status == domain.SubmissionInFlight })
	assert.True(t, s.Busy())
	assert.Equal(t, "Sending Location...", s.ActionLabel())

	// The primary action and arming are both ignored while the write runs.
	require.NoError(t, r.Submit(ctx))
	require.NoError(t, r.Arm(ctx))
	s = snap(t, r)
	assert.Equal(t, domain.SubmissionInFlight, s.Submission.Status)
	assert.Equal(t, 1, geo.calls())

	close(w.gate)
	waitFor(t, r, func(s Snapshot) bool { return s.Outcome.Status == domain.SubmissionSucceeded })
	assert.Len(t, w.writes(), 1)

	assert.Never(t, func() bool { return len(w.writes()) > 1 }, 50*time.Millisecond, 5*time.Millisecond)

	// Re-arming resubmits the position that is still resolved, once.
	require.NoError(t, r.Arm(ctx))
	require.Eventually(t, func() bool { return len(w.writes()) == 2 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, []domain.Position{testPosition, testPosition}, w.writes())
	assert.Equal(t, 1, geo.calls())
}

func TestReporter_AcquisitionFailureWhileArmed(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		reason string
	}{
		{"permission denied", &domain.PositionError{Code: domain.PositionPermissionDenied}, "location permission denied by user"},
		{"timeout", &domain.PositionError{Code: domain.PositionTimeout}, "location request timed out, please try again"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := &recordingWriter{}
			r := startReporter(t, instantGeolocator{err: tc.err}, w, ReporterOptions{})

			require.NoError(t, r.Submit(context.Background()))

			s := waitFor(t, r, func(s Snapshot) bool { return s.Feedback != nil })
			assert.Equal(t, domain.AcquisitionFailed, s.Acquisition.Status)
			assert.Equal(t, tc.reason, s.Acquisition.Reason())
			assert.Equal(t, domain.SubmissionUnarmed, s.Submission.Status)
			assert.Equal(t, domain.FeedbackError, s.Feedback.Kind)
			assert.Equal(t, "Failed to get location: "+tc.reason, s.Feedback.Text)
			assert.Empty(t, w.writes())
		})
	}
}

func TestReporter_LatestRequestWins(t *testing.T) {
	geo := &scriptedGeolocator{}
	var (
		mu       sync.Mutex
		resolves int
		prev     domain.AcquisitionStatus
	)
	r := startReporter(t, geo, &recordingWriter{}, ReporterOptions{
		OnChange: func(s Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			if s.Acquisition.Resolved() && prev != domain.AcquisitionResolved {
				resolves++
			}
			prev = s.Acquisition.Status
		},
	})
	ctx := context.Background()

	require.NoError(t, r.RequestLocation(ctx))
	geo.waitCalls(t, 1)
	require.NoError(t, r.RequestLocation(ctx))
	geo.waitCalls(t, 2)

	posA := domain.Position{Latitude: 10, Longitude: 10, Timestamp: 1}
	posB := domain.Position{Latitude: 20, Longitude: 20, Timestamp: 2}

	// The superseded call settles first and is dropped.
	geo.answer(0, geoReply{pos: posA})
	assert.Never(t, func() bool {
		s, err := r.Snapshot(ctx)
		return err == nil && !s.Acquisition.Pending()
	}, 50*time.Millisecond, 5*time.Millisecond)

	geo.answer(1, geoReply{pos: posB})
	s := waitFor(t, r, func(s Snapshot) bool { return s.Acquisition.Resolved() })
	assert.Equal(t, posB, *s.Acquisition.Position)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, resolves)
}

func TestReporter_StaleResultAfterNewerResolved(t *testing.T) {
	geo := &scriptedGeolocator{}
	r := startReporter(t, geo, &recordingWriter{}, ReporterOptions{})
	ctx := context.Background()

	require.NoError(t, r.RequestLocation(ctx))
	geo.waitCalls(t, 1)
	require.NoError(t, r.RequestLocation(ctx))
	geo.waitCalls(t, 2)

	posB := domain.Position{Latitude: 20, Timestamp: 2}
	geo.answer(1, geoReply{pos: posB})
	waitFor(t, r, func(s Snapshot) bool { return s.Acquisition.Resolved() })

	geo.answer(0, geoReply{err: &domain.PositionError{Code: domain.PositionTimeout}})
	assert.Never(t, func() bool {
		s, err := r.Snapshot(ctx)
		return err == nil && !s.Acquisition.Resolved()
	}, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, posB, *snap(t, r).Position)
}

func TestReporter_FeedbackExpires(t *testing.T) {
	r := startReporter(t, instantGeolocator{pos: testPosition}, &recordingWriter{}, ReporterOptions{
		FeedbackLifetime: 30 * time.Millisecond,
	})

	require.NoError(t, r.Submit(context.Background()))

	waitFor(t, r, func(s Snapshot) bool { return s.Feedback != nil })
	s := waitFor(t, r, func(s Snapshot) bool { return s.Feedback == nil })
	assert.Equal(t, domain.SubmissionSucceeded, s.Outcome.Status)
}

func TestReporter_Dismiss(t *testing.T) {
	r := startReporter(t, instantGeolocator{pos: testPosition}, &recordingWriter{}, ReporterOptions{
		FeedbackLifetime: time.Hour,
	})
	ctx := context.Background()

	require.NoError(t, r.Submit(ctx))
	waitFor(t, r, func(s Snapshot) bool { return s.Feedback != nil })

	require.NoError(t, r.Dismiss(ctx))
	assert.Nil(t, snap(t, r).Feedback)
}

func TestReporter_SnapshotIsCopy(t *testing.T) {
	r := startReporter(t, instantGeolocator{pos: testPosition}, &recordingWriter{}, ReporterOptions{})
	require.NoError(t, r.RequestLocation(context.Background()))

	s := waitFor(t, r, func(s Snapshot) bool { return s.Position != nil })
	s.Position.Latitude = 99
	s.Acquisition.Position.Latitude = 99

	again := snap(t, r)
	assert.Equal(t, testPosition, *again.Position)
	assert.Equal(t, testPosition, *again.Acquisition.Position)
}

func TestReporter_StoppedRejectsCalls(t *testing.T) {
	r := NewReporter(nil, &recordingWriter{}, ReporterOptions{}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	_, err := r.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrReporterStopped)

	// Posts may land in the buffer until it is full.
	err = nil
	for i := 0; i <= eventBuffer && err == nil; i++ {
		err = r.Arm(context.Background())
	}
	assert.ErrorIs(t, err, ErrReporterStopped)
}

func TestReporter_OnChangeAfterEveryStep(t *testing.T) {
	var (
		mu       sync.Mutex
		statuses []domain.SubmissionStatus
	)
	r := startReporter(t, instantGeolocator{pos: testPosition}, &recordingWriter{}, ReporterOptions{
		OnChange: func(s Snapshot) {
			mu.Lock()
			statuses = append(statuses, s.Submission.Status)
			mu.Unlock()
		},
	})

	require.NoError(t, r.Submit(context.Background()))
	waitFor(t, r, func(s Snapshot) bool { return s.Outcome.Status == domain.SubmissionSucceeded })

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, statuses, domain.SubmissionArmed)
	assert.Contains(t, statuses, domain.SubmissionInFlight)
	assert.Equal(t, domain.SubmissionUnarmed, statuses[len(statuses)-1])
}
