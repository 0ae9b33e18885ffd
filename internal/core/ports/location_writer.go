package ports

import (
	"context"

	"github.com/99minutos/dropoff-location/internal/core/domain"
)

// LocationWriter is the persistence collaborator the reporter submits to.
// A returned error carries a human-readable reason.
type LocationWriter interface {
	Save(ctx context.Context, pos domain.Position) error
}
