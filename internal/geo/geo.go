// internal/geo/geo.go
// Distance and radius containment over coordinate pairs
package geo

import (
	"errors"
	"math"

	"go.uber.org/zap"
)

const earthRadiusKm = 6371

// kilometers per degree of latitude
const kmPerDegree = 111.32

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate is within latitude [-90,90]
// and longitude [-180,180].
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// BoundingBox is a lat/lon rectangle used to pre-filter candidates
// before exact distance computation.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Index computes great-circle distances and radius containment.
type Index struct {
	logger *zap.Logger
}

func NewIndex(logger *zap.Logger) *Index {
	return &Index{logger: logger}
}

// DistanceKm returns the haversine distance between two coordinates in
// kilometers. Invalid input yields 0 with a logged warning so that batch
// filtering never aborts on one bad record.
func (i *Index) DistanceKm(a, b Coordinate) float64 {
	if !a.Valid() || !b.Valid() {
		i.logger.Warn("invalid coordinates for distance computation",
			zap.Float64("a_lat", a.Latitude),
			zap.Float64("a_lon", a.Longitude),
			zap.Float64("b_lat", b.Latitude),
			zap.Float64("b_lon", b.Longitude))
		return 0
	}

	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// WithinRadius reports whether point lies within radiusKm of center.
// Any invalid coordinate yields false.
func (i *Index) WithinRadius(center, point Coordinate, radiusKm float64) bool {
	if !center.Valid() || !point.Valid() {
		return false
	}
	return i.DistanceKm(center, point) <= radiusKm
}

// BoundingBox returns a rectangular approximation of the search radius.
// Unlike DistanceKm this is a precondition check and rejects an invalid
// center outright.
func (i *Index) BoundingBox(center Coordinate, radiusKm float64) (BoundingBox, error) {
	if !center.Valid() {
		return BoundingBox{}, errors.New("invalid center coordinates")
	}

	latOffset := radiusKm / kmPerDegree
	lonOffset := radiusKm / (kmPerDegree * math.Cos(toRadians(center.Latitude)))

	return BoundingBox{
		MinLat: center.Latitude - latOffset,
		MaxLat: center.Latitude + latOffset,
		MinLon: center.Longitude - lonOffset,
		MaxLon: center.Longitude + lonOffset,
	}, nil
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
