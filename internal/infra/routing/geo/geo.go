// Package geo holds the spherical and planar math used by the road network:
// distances, bearings, angular averaging and point-to-segment distances.
// All angles are in degrees and all distances in metres.
package geo

import (
	"math"

	"roadnet/internal/domain/entity"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// EarthRadiusMeters is the mean earth radius used by every distance function.
const EarthRadiusMeters = 6_371_000.0

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// Distance returns the haversine distance between a and b in metres.
func Distance(a, b entity.Point) float64 {
	lat1 := a.Latitude * degToRad
	lat2 := b.Latitude * degToRad
	dLat := (b.Latitude - a.Latitude) * degToRad
	dLon := (b.Longitude - a.Longitude) * degToRad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Heading returns the initial compass bearing from a to b.
// 0 is north, 90 east; the result lies in (-180, 180].
func Heading(a, b entity.Point) float64 {
	lat1 := a.Latitude * degToRad
	lat2 := b.Latitude * degToRad
	dLon := (b.Longitude - a.Longitude) * degToRad

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return NormalizeAngle(math.Atan2(y, x) * radToDeg)
}

// NormalizeAngle maps any angle into (-180, 180].
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	switch {
	case deg > 180:
		deg -= 360
	case deg <= -180:
		deg += 360
	}

	return deg
}

// AngleAverage is the circular mean of the given headings.
// Sines and cosines are accumulated so 359 and 1 average to 0, not 180.
// An empty input averages to 0.
func AngleAverage(headings []float64) float64 {
	if len(headings) == 0 {
		return 0
	}

	var sinSum, cosSum float64
	for _, h := range headings {
		sinSum += math.Sin(h * degToRad)
		cosSum += math.Cos(h * degToRad)
	}

	return NormalizeAngle(math.Atan2(sinSum, cosSum) * radToDeg)
}

// AngleDiff returns a-b normalised into (-180, 180].
func AngleDiff(a, b float64) float64 {
	return NormalizeAngle(a - b)
}

// HeadingInRange reports whether heading lies in the half-open range
// [from, to). A range with from > to wraps across ±180, so adjacent ranges
// never both claim their shared bound.
func HeadingInRange(heading, from, to float64) bool {
	if from <= to {
		return heading >= from && heading < to
	}

	return heading >= from || heading < to
}

// Midpoint is the arithmetic midpoint of two positions in degree space.
func Midpoint(a, b entity.Point) entity.Point {
	return Lerp(a, b, 0.5)
}

// Lerp interpolates linearly between a (t=0) and b (t=1).
func Lerp(a, b entity.Point, t float64) entity.Point {
	return entity.Point{
		Latitude:  a.Latitude + (b.Latitude-a.Latitude)*t,
		Longitude: a.Longitude + (b.Longitude-a.Longitude)*t,
	}
}

func toS2(p entity.Point) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(p.Latitude, p.Longitude))
}

// PointSegmentDistance is the exact great-circle distance from p to segment ab.
func PointSegmentDistance(p, a, b entity.Point) float64 {
	if a == b {
		return Distance(p, a)
	}

	return s2.DistanceFromSegment(toS2(p), toS2(a), toS2(b)).Radians() * EarthRadiusMeters
}

// ProjectOntoSegment returns the point of segment ab closest to p.
func ProjectOntoSegment(p, a, b entity.Point) entity.Point {
	if a == b {
		return a
	}

	ll := s2.LatLngFromPoint(s2.Project(toS2(p), toS2(a), toS2(b)))

	return entity.Point{Latitude: ll.Lat.Degrees(), Longitude: ll.Lng.Degrees()}
}

// PointSegmentDistanceApprox projects a and b onto a local equirectangular
// plane centred on p and measures the planar distance. Accurate to well under
// a metre for segments of a few hundred metres away from the poles.
func PointSegmentDistanceApprox(p, a, b entity.Point) float64 {
	kx := math.Cos(p.Latitude*degToRad) * degToRad * EarthRadiusMeters
	ky := degToRad * EarthRadiusMeters

	ax, ay := (a.Longitude-p.Longitude)*kx, (a.Latitude-p.Latitude)*ky
	bx, by := (b.Longitude-p.Longitude)*kx, (b.Latitude-p.Latitude)*ky

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(ax, ay)
	}

	t := -(ax*dx + ay*dy) / lenSq
	t = math.Max(0, math.Min(1, t))

	return math.Hypot(ax+t*dx, ay+t*dy)
}

// SquaredEuclidean is the squared distance in raw degree space. It is the
// native metric of the spatial index and only meaningful for ordering.
func SquaredEuclidean(a, b entity.Point) float64 {
	dLat := a.Latitude - b.Latitude
	dLon := a.Longitude - b.Longitude

	return dLat*dLat + dLon*dLon
}

// Extent returns the bounding box of points.
func Extent(points []entity.Point) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}
	}

	return entity.LineString(points).Bound()
}

// Centroid returns the mean position of points.
func Centroid(points []entity.Point) entity.Point {
	if len(points) == 0 {
		return entity.Point{}
	}

	var lat, lon float64
	for _, p := range points {
		lat += p.Latitude
		lon += p.Longitude
	}

	n := float64(len(points))

	return entity.Point{Latitude: lat / n, Longitude: lon / n}
}

// PolylineLength sums the haversine lengths of consecutive vertices.
func PolylineLength(points []entity.Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}

	return total
}

// KmhToMs converts km/h to m/s.
func KmhToMs(kmh float64) float64 {
	return kmh / 3.6
}

// MsToKmh converts m/s to km/h.
func MsToKmh(ms float64) float64 {
	return ms * 3.6
}

// Offset moves p by the given metres north and east using a local flat-earth
// approximation. Intended for building fixtures and small search windows.
func Offset(p entity.Point, northM, eastM float64) entity.Point {
	dLat := northM / EarthRadiusMeters * radToDeg
	dLon := eastM / (EarthRadiusMeters * math.Cos(p.Latitude*degToRad)) * radToDeg

	return entity.Point{Latitude: p.Latitude + dLat, Longitude: p.Longitude + dLon}
}
