package handler

import (
	"time"

	"github.com/99minutos/dropoff-location/internal/core/ports"
)

const (
	msgLocationStored    = "location stored"
	msgLocationDuplicate = "location already recorded"
	msgLocationNotFound  = "no location recorded yet"
	msgInvalidPayload    = "invalid payload"
)

// messageResponse is the envelope for errors and for bodies with nothing else
// to say. Clients surface Message verbatim.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Request / Response types ---

// Fields are pointers so "required" rejects a missing value but accepts zero.
type recordLocationRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Accuracy  *float64 `json:"accuracy"  validate:"required,min=0"`
	Timestamp *int64   `json:"timestamp" validate:"required,gt=0"`
}

func (r recordLocationRequest) toInput() ports.RecordLocationInput {
	return ports.RecordLocationInput{
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
		Accuracy:  *r.Accuracy,
		Timestamp: *r.Timestamp,
	}
}

type recordLocationResponse struct {
	ID         string     `json:"id,omitempty"`
	Message    string     `json:"message"`
	ReceivedAt *time.Time `json:"received_at,omitempty"`
}

type locationResponse struct {
	ID         string    `json:"id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy"`
	Timestamp  int64     `json:"timestamp"`
	ReceivedAt time.Time `json:"received_at"`
}

func toLocationResponse(v *ports.LocationView) locationResponse {
	return locationResponse{
		ID:         v.ID,
		Latitude:   v.Latitude,
		Longitude:  v.Longitude,
		Accuracy:   v.Accuracy,
		Timestamp:  v.Timestamp,
		ReceivedAt: v.ReceivedAt,
	}
}
