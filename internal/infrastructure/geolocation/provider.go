package geolocation

import (
	"fmt"
	"io"

	"github.com/99minutos/dropoff-location/internal/core/ports"
	"github.com/99minutos/dropoff-location/internal/pkg/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the provider selected by cfg. It returns a nil Geolocator for
// the "none" provider, which the reporter treats as a missing capability.
// The returned closer releases provider resources.
func New(cfg config.GeolocationConfig) (ports.Geolocator, io.Closer, error) {
	switch cfg.Provider {
	case config.ProviderIPAPI:
		return NewIPAPI(cfg.IPAPIURL, cfg.IPAccuracy), nopCloser{}, nil
	case config.ProviderGeoIP:
		g, err := OpenGeoIP(cfg.GeoIPPath, cfg.GeoIPAddr)
		if err != nil {
			return nil, nil, err
		}
		return g, g, nil
	case config.ProviderFixed:
		return NewFixed(cfg.FixedLatitude, cfg.FixedLongitude, cfg.FixedAccuracy), nopCloser{}, nil
	case config.ProviderNone:
		return nil, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("geolocation: unknown provider %q", cfg.Provider)
	}
}
