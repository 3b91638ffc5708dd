package traversal

import (
	"encoding/json"
	"math"

	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/routing/geo"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/spatial"

	"github.com/pkg/errors"
)

// ErrWaypointNotFound is returned when no node satisfies a point query.
var ErrWaypointNotFound = errors.New("waypoint not found")

// HeadingRange is the half-open range [From, To) of compass bearings in
// degrees. From > To wraps across ±180; a span of 360 or more accepts every
// bearing.
type HeadingRange struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// AnyHeading accepts every bearing.
var AnyHeading = HeadingRange{From: -180, To: 180}

// Contains reports whether heading lies in the range.
func (r HeadingRange) Contains(heading float64) bool {
	if r.To-r.From >= 360 {
		return true
	}

	return geo.HeadingInRange(geo.NormalizeAngle(heading), geo.NormalizeAngle(r.From), geo.NormalizeAngle(r.To))
}

// PointQuery asks for the node nearest to Point, at most Radius metres away,
// with a road leaving it in a direction within Heading. A NaN radius is
// unbounded; a nil heading accepts any node.
type PointQuery struct {
	Point   entity.Point  `json:"point"`
	Radius  float64       `json:"radius"`
	Heading *HeadingRange `json:"heading,omitempty"`
}

// UnmarshalJSON decodes a query; a missing or null radius is unbounded.
func (q *PointQuery) UnmarshalJSON(data []byte) error {
	var raw struct {
		Point   entity.Point  `json:"point"`
		Radius  *float64      `json:"radius"`
		Heading *HeadingRange `json:"heading"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.WithStack(err)
	}

	*q = PointQuery{Point: raw.Point, Radius: math.NaN(), Heading: raw.Heading}
	if raw.Radius != nil {
		q.Radius = *raw.Radius
	}

	return nil
}

func (q PointQuery) radius() float64 {
	if math.IsNaN(q.Radius) {
		return math.Inf(1)
	}

	return q.Radius
}

// accepts reports whether some outgoing edge of n points into the heading range.
func (q PointQuery) accepts(g *graph.Graph, n graph.NodeID) bool {
	if q.Heading == nil {
		return true
	}

	p := g.NodeMut(n).Point
	for _, next := range g.Neighbors(n, graph.Outgoing) {
		if q.Heading.Contains(geo.Heading(p, g.NodeMut(next).Point)) {
			return true
		}
	}

	return false
}

// ResolveWaypoint walks the nodes in order of geodesic distance from the
// query point and returns the first one the query accepts.
func ResolveWaypoint(g *graph.Graph, index *spatial.KDTree[graph.NodeID], q PointQuery) (graph.NodeID, error) {
	radius := q.radius()
	it := index.IterNearest(q.Point, spatial.Geodesic)
	for {
		item, d, ok := it.Next()
		if !ok || d > radius {
			return graph.NoNode, errors.Wrapf(ErrWaypointNotFound, "near %.6f,%.6f", q.Point.Latitude, q.Point.Longitude)
		}
		if g.HasNode(item.Value) && q.accepts(g, item.Value) {
			return item.Value, nil
		}
	}
}

// ResolveWaypoints resolves every query. Nodes holds the resolved nodes in
// query order; Missed holds the indices of the queries that failed.
func ResolveWaypoints(g *graph.Graph, index *spatial.KDTree[graph.NodeID], queries []PointQuery) (nodes []graph.NodeID, missed []int) {
	for i, q := range queries {
		n, err := ResolveWaypoint(g, index, q)
		if err != nil {
			missed = append(missed, i)

			continue
		}
		nodes = append(nodes, n)
	}

	return nodes, missed
}
