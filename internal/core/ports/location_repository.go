package ports

import (
	"context"

	"github.com/99minutos/dropoff-location/internal/core/domain"
)

// LocationAppender is an append-only store; the store assigns the record key.
type LocationAppender interface {
	Append(ctx context.Context, pos domain.Position) (string, error)
}

// LocationRepository is the server-side store behind POST /api/location.
type LocationRepository interface {
	LocationAppender
	// Latest returns the most recently received record, or
	// domain.ErrLocationNotFound when the store is empty.
	Latest(ctx context.Context) (*domain.LocationRecord, error)
}
