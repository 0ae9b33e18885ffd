package ports

import (
	"context"
	"time"
)

// RecordLocationInput is the DTO passed from the transport layer to LocationService.
type RecordLocationInput struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Timestamp int64 // epoch milliseconds
}

// RecordLocationResult is returned after a position has been accepted.
type RecordLocationResult struct {
	ID         string
	ReceivedAt time.Time
	// Duplicate is true when an identical reading was already stored recently
	// and nothing new was written.
	Duplicate bool
}

// LocationView is the read model of a stored position.
type LocationView struct {
	ID         string
	Latitude   float64
	Longitude  float64
	Accuracy   float64
	Timestamp  int64
	ReceivedAt time.Time
}

// LocationService defines the use cases of the location endpoint.
type LocationService interface {
	Record(ctx context.Context, in RecordLocationInput) (*RecordLocationResult, error)
	Latest(ctx context.Context) (*LocationView, error)
}
