package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000

var ErrInvalidPoint = errors.New("invalid coordinates")

// GeoPoint is a WGS-84 position in degrees.
type GeoPoint struct {
	Lat float64
	Lon float64
}

func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidPoint, p.Lat)
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidPoint, p.Lon)
	}
	return nil
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.4f, %.4f", p.Lat, p.Lon)
}

// ProjectLocation is the registered site of a project and the radius a
// device has to be within to clock in there.
type ProjectLocation struct {
	ProjectID    int64
	Point        GeoPoint
	RadiusMeters float64
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// IsWithinRadius reports whether current lies inside the target's radius.
// A distance exactly equal to the radius counts as inside.
func IsWithinRadius(current GeoPoint, target ProjectLocation) bool {
	return Distance(current, target.Point) <= target.RadiusMeters
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
