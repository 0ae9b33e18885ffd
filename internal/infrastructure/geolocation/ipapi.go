package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/99minutos/dropoff-location/internal/core/domain"
)

// DefaultIPAPIURL is the ip-api.com compatible lookup of the caller's address.
const DefaultIPAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// DefaultIPAccuracy is reported for address based fixes, which carry no
// accuracy of their own.
const DefaultIPAccuracy = 5000.0

// IPAPI locates the machine through an ip-api.com style JSON service.
type IPAPI struct {
	url      string
	accuracy float64
	http     *http.Client
	now      func() time.Time
}

func NewIPAPI(url string, accuracy float64) *IPAPI {
	if url == "" {
		url = DefaultIPAPIURL
	}
	if accuracy <= 0 {
		accuracy = DefaultIPAccuracy
	}
	return &IPAPI{url: url, accuracy: accuracy, http: &http.Client{}, now: time.Now}
}

type ipapiResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CurrentPosition satisfies ports.Geolocator. Cached answers are never used,
// so MaximumAge has no effect; the deadline comes from ctx.
func (g *IPAPI) CurrentPosition(ctx context.Context, _ domain.PositionOptions) (domain.Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return domain.Position{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := g.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Position{}, ctx.Err()
		}
		return domain.Position{}, &domain.PositionError{Code: domain.PositionUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return domain.Position{}, &domain.PositionError{Code: domain.PositionPermissionDenied, Message: "lookup refused: " + resp.Status}
	case resp.StatusCode != http.StatusOK:
		return domain.Position{}, &domain.PositionError{Code: domain.PositionUnavailable, Message: "lookup failed: " + resp.Status}
	}

	var body ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Position{}, &domain.PositionError{Code: domain.PositionUnavailable, Message: fmt.Sprintf("decode lookup: %v", err)}
	}
	if body.Status != "success" {
		msg := body.Message
		if msg == "" {
			msg = "lookup status " + body.Status
		}
		return domain.Position{}, &domain.PositionError{Code: domain.PositionUnavailable, Message: msg}
	}

	return domain.Position{
		Latitude:  body.Lat,
		Longitude: body.Lon,
		Accuracy:  g.accuracy,
		Timestamp: g.now().UnixMilli(),
	}, nil
}
