// Package entity contains the core records of the road network domain:
// road centerlines, traffic sensors and their readings.
package entity

import (
	"math"

	"github.com/paulmach/orb"
)

// Point is a WGS84 position in degrees.
// Equality is exact floating-point comparison.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewPoint creates a point from latitude and longitude.
func NewPoint(lat, lon float64) Point {
	return Point{Latitude: lat, Longitude: lon}
}

// PointFromOrb converts an orb point (lon, lat order) into a Point.
func PointFromOrb(p orb.Point) Point {
	return Point{Latitude: p.Lat(), Longitude: p.Lon()}
}

// Orb returns the point in orb's (lon, lat) order.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// Within reports whether the point lies inside the bound (edges inclusive).
func (p Point) Within(bound orb.Bound) bool {
	return bound.Contains(p.Orb())
}

// IsValid reports whether the coordinates are finite and inside WGS84 limits.
func (p Point) IsValid() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
		return false
	}

	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// LineString converts a point sequence to an orb line string.
func LineString(points []Point) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = p.Orb()
	}

	return ls
}

// PointsFromLineString converts an orb line string to a point sequence.
func PointsFromLineString(ls orb.LineString) []Point {
	points := make([]Point, len(ls))
	for i, p := range ls {
		points[i] = PointFromOrb(p)
	}

	return points
}
