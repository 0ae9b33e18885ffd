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

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, pos domain.Position) (bool, error)
	Mark(ctx context.Context, pos domain.Position) error
}

type locationService struct {
	repo  ports.LocationRepository
	dedup DedupChecker
	log   zerolog.Logger
	now   func() time.Time
}

// NewLocationService returns a LocationService implementation. dedup may be
// nil, in which case every submission is stored.
func NewLocationService(repo ports.LocationRepository, dedup DedupChecker, log zerolog.Logger) ports.LocationService {
	return &locationService{
		repo:  repo,
		dedup: dedup,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Record deduplicates and appends a single position.
func (s *locationService) Record(ctx context.Context, in ports.RecordLocationInput) (*ports.RecordLocationResult, error) {
	pos := domain.Position{
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Accuracy:  in.Accuracy,
		Timestamp: in.Timestamp,
	}
	receivedAt := s.now()

	// 1. Idempotency check, best effort: a Redis outage never blocks a write.
	if s.dedup != nil {
		isDup, err := s.dedup.IsDuplicate(ctx, pos)
		if err != nil {
			s.log.Warn().Err(err).Int64("timestamp", pos.Timestamp).Msg("dedup check failed, storing anyway")
		} else if isDup {
			metrics.LocationDedupTotal.WithLabelValues("hit").Inc()
			s.log.Debug().Int64("timestamp", pos.Timestamp).Msg("duplicate location skipped")
			return &ports.RecordLocationResult{ReceivedAt: receivedAt, Duplicate: true}, nil
		}
		metrics.LocationDedupTotal.WithLabelValues("miss").Inc()
	}

	// 2. Append.
	id, err := s.repo.Append(ctx, pos)
	if err != nil {
		metrics.LocationsReceivedTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("record location: %w", err)
	}

	// 3. Mark after the write so a failed insert can be resubmitted.
	if s.dedup != nil {
		if markErr := s.dedup.Mark(ctx, pos); markErr != nil {
			s.log.Warn().Err(markErr).Str("id", id).Msg("failed to set dedup key")
		}
	}

	metrics.LocationsReceivedTotal.WithLabelValues("stored").Inc()
	s.log.Info().
		Str("id", id).
		Float64("latitude", pos.Latitude).
		Float64("longitude", pos.Longitude).
		Float64("accuracy", pos.Accuracy).
		Msg("location stored")

	return &ports.RecordLocationResult{ID: id, ReceivedAt: receivedAt}, nil
}

// Latest returns the most recently stored position.
func (s *locationService) Latest(ctx context.Context) (*ports.LocationView, error) {
	rec, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return &ports.LocationView{
		ID:         rec.ID,
		Latitude:   rec.Position.Latitude,
		Longitude:  rec.Position.Longitude,
		Accuracy:   rec.Position.Accuracy,
		Timestamp:  rec.Position.Timestamp,
		ReceivedAt: rec.ReceivedAt,
	}, nil
}
