package geolocation

import (
	"context"
	"time"

	"github.com/99minutos/dropoff-location/internal/core/domain"
)

// Fixed reports a configured position, stamped with the current time. Used
// for kiosks at a known spot and for local development.
type Fixed struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	now       func() time.Time
}

func NewFixed(lat, lng, accuracy float64) *Fixed {
	return &Fixed{Latitude: lat, Longitude: lng, Accuracy: accuracy, now: time.Now}
}

func (f *Fixed) CurrentPosition(ctx context.Context, _ domain.PositionOptions) (domain.Position, error) {
	if err := ctx.Err(); err != nil {
		return domain.Position{}, err
	}
	return domain.Position{
		Latitude:  f.Latitude,
		Longitude: f.Longitude,
		Accuracy:  f.Accuracy,
		Timestamp: f.now().UnixMilli(),
	}, nil
}
