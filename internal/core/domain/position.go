package domain

import (
	"errors"
	"time"
)

var ErrLocationNotFound = errors.New("location not found")

// Position is a single geolocation reading.
type Position struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Accuracy  float64 `json:"accuracy" bson:"accuracy"`   // meters
	Timestamp int64   `json:"timestamp" bson:"timestamp"` // epoch milliseconds
}

// Time returns the capture time of the reading.
func (p Position) Time() time.Time {
	return time.UnixMilli(p.Timestamp)
}

// PositionOptions mirrors the knobs of a platform "current position" request.
type PositionOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// LocationRecord is a Position as stored by a persistence backend.
type LocationRecord struct {
	ID         string    `json:"id"`
	Position   Position  `json:"position"`
	ReceivedAt time.Time `json:"received_at"`
}
