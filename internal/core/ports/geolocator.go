package ports

import (
	"context"

	"github.com/99minutos/dropoff-location/internal/core/domain"
)

// Geolocator is the platform "get current position" capability.
//
// CurrentPosition returns exactly one of a Position or an error. Failures the
// provider can explain are reported as *domain.PositionError; a context
// deadline is treated as a timeout by the caller.
type Geolocator interface {
	CurrentPosition(ctx context.Context, opts domain.PositionOptions) (domain.Position, error)
}
