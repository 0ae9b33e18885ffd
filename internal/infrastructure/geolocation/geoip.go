package geolocation

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/oschwald/geoip2-golang"

	"github.com/99minutos/dropoff-location/internal/core/domain"
)

type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
}

// GeoIP locates a configured address in a local MaxMind City database.
type GeoIP struct {
	db   cityReader
	addr net.IP
	now  func() time.Time
	// closer is set when GeoIP owns the database handle.
	closer func() error
}

// OpenGeoIP opens the database at path and resolves addr against it.
func OpenGeoIP(path, addr string) (*GeoIP, error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return nil, fmt.Errorf("geoip: invalid address %q", addr)
	}
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open %s: %w", path, err)
	}
	return &GeoIP{db: db, addr: ip, now: time.Now, closer: db.Close}, nil
}

// Close releases the database.
func (g *GeoIP) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer()
}

// CurrentPosition satisfies ports.Geolocator. The accuracy radius of the
// database record (kilometers) is reported in meters.
func (g *GeoIP) CurrentPosition(ctx context.Context, _ domain.PositionOptions) (domain.Position, error) {
	if err := ctx.Err(); err != nil {
		return domain.Position{}, err
	}

	rec, err := g.db.City(g.addr)
	if err != nil {
		return domain.Position{}, &domain.PositionError{Code: domain.PositionUnavailable, Message: err.Error()}
	}
	loc := rec.Location
	if loc.Latitude == 0 && loc.Longitude == 0 && loc.AccuracyRadius == 0 {
		return domain.Position{}, &domain.PositionError{
			Code:    domain.PositionUnavailable,
			Message: fmt.Sprintf("no location for %s", g.addr),
		}
	}

	return domain.Position{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Accuracy:  float64(loc.AccuracyRadius) * 1000,
		Timestamp: g.now().UnixMilli(),
	}, nil
}
