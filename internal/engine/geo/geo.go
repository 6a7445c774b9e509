// Package geo provides great-circle distance and the proximity join used by
// location-aware ranking. Data volumes are tens to low hundreds of rows per
// city, so candidates are scanned linearly; there is no spatial index.
package geo

import (
	"fmt"
	"math"

	"github.com/tripflow/tripflow-api/internal/types"
)

const earthRadiusKm = 6371

// Point is a coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// NewPoint validates the coordinate ranges. Out-of-range values are rejected,
// never clamped.
func NewPoint(lat, lon float64) (Point, error) {
	if lat < -90 || lat > 90 {
		return Point{}, fmt.Errorf("%w: latitude %v out of range [-90,90]", types.ErrValidation, lat)
	}
	if lon < -180 || lon > 180 {
		return Point{}, fmt.Errorf("%w: longitude %v out of range [-180,180]", types.ErrValidation, lon)
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// DistanceKm returns the great-circle distance between two points using the
// Haversine formula. The atan2 form keeps it stable near the poles and the
// antimeridian.
func DistanceKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}
