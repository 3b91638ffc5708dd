package spatial

import (
	"math"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"
	"roadnet/internal/infra/routing/geo"

	"github.com/dhconnelly/rtreego"
)

const corridorTolerance = 1e-9

// ErrInvalidRadius is returned for a corridor radius that is negative or NaN.
var ErrInvalidRadius = errors.New("corridor radius must be a non-negative number")

// ValidRadius checks radius for use with Contains.
func ValidRadius(radius float64) error {
	if !(radius >= 0) {
		return errors.Wrapf(ErrInvalidRadius, "radius %v", radius)
	}

	return nil
}

type corridorSegment struct {
	from, to entity.Point
	rect     rtreego.Rect
}

func (s *corridorSegment) Bounds() rtreego.Rect {
	return s.rect
}

// Corridor indexes the segments of a polyline in an r-tree so "is this point
// near the path" can be answered without scanning every segment.
type Corridor struct {
	tree     *rtreego.Rtree
	segments int
}

// NewCorridor indexes consecutive pairs of path. A single point is indexed
// as a degenerate segment.
func NewCorridor(path []entity.Point) *Corridor {
	c := &Corridor{tree: rtreego.NewTree(2, 25, 50)}

	switch len(path) {
	case 0:
		return c
	case 1:
		c.insert(path[0], path[0])
	default:
		for i := 1; i < len(path); i++ {
			c.insert(path[i-1], path[i])
		}
	}

	return c
}

func (c *Corridor) insert(a, b entity.Point) {
	c.tree.Insert(&corridorSegment{from: a, to: b, rect: boxOf(
		math.Min(a.Latitude, b.Latitude), math.Min(a.Longitude, b.Longitude),
		math.Max(a.Latitude, b.Latitude), math.Max(a.Longitude, b.Longitude),
	)})
	c.segments++
}

func boxOf(minLat, minLon, maxLat, maxLon float64) rtreego.Rect {
	rect, err := rtreego.NewRect(
		rtreego.Point{minLat, minLon},
		[]float64{maxLat - minLat + corridorTolerance, maxLon - minLon + corridorTolerance},
	)
	if err != nil {
		// lengths are strictly positive by construction
		panic(err)
	}

	return rect
}

// Len returns the number of indexed segments.
func (c *Corridor) Len() int {
	return c.segments
}

// Contains reports whether p lies within radius metres of any path segment.
// No point lies within a negative or NaN radius.
func (c *Corridor) Contains(p entity.Point, radius float64) bool {
	if c.segments == 0 || ValidRadius(radius) != nil {
		return false
	}

	north := geo.Offset(p, radius, radius)
	south := geo.Offset(p, -radius, -radius)
	query := boxOf(south.Latitude, south.Longitude, north.Latitude, north.Longitude)

	for _, hit := range c.tree.SearchIntersect(query) {
		seg := hit.(*corridorSegment)
		if geo.PointSegmentDistance(p, seg.from, seg.to) <= radius {
			return true
		}
	}

	return false
}
