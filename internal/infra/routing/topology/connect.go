package topology

import (
	"cmp"
	"math"
	"slices"

	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/progress"
	"roadnet/internal/infra/routing/geo"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/spatial"
)

const (
	// alignedHeadingDeg is how far a candidate edge may deviate from a
	// through node's heading.
	alignedHeadingDeg = 10.0
	// coneHeadingDeg is the half-angle of the cone, around a through node's
	// heading, in which a connector endpoint must lie.
	coneHeadingDeg = 15.0
)

type connectCandidate struct {
	edge     graph.EdgeID
	from, to graph.NodeID
	distance float64
}

// ConnectDisjoint links nodes to nearby edges of other roads with pairs of
// connector edges, one each way. Caps connect to the nearer endpoint of the
// candidate edge; through nodes only connect to edges running alongside and
// pick the endpoint lying ahead of or behind them. Returns the number of
// connector pairs added.
func ConnectDisjoint(g *graph.Graph, connectDistance float64, workers int, obs progress.Observer) int {
	obs = progress.OrNoop(obs)

	var longest float64
	for _, id := range g.EdgeIDs() {
		longest = max(longest, g.EdgeMut(id).Distance)
	}
	limit := connectDistance + longest/2

	index := spatial.EdgeIndex(g, func(_ graph.EdgeID, e *graph.Edge) bool { return !e.IsConnector })
	ids := g.NodeIDs()
	targets := make([][]graph.NodeID, len(ids))

	chunked(len(ids), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			targets[i] = connectTargets(g, index, ids[i], connectDistance, limit)
		}
		obs.Tick(StepConnect, hi-lo)
	})

	var added int
	for i, id := range ids {
		for _, target := range targets[i] {
			if g.AreNeighbours(id, target) {
				continue
			}
			a, b := g.NodeMut(id).Point, g.NodeMut(target).Point
			g.AddEdge(id, target, connector(a, b))
			g.AddEdge(target, id, connector(b, a))
			added++
		}
	}

	return added
}

func connectTargets(g *graph.Graph, index *spatial.KDTree[graph.EdgeID], id graph.NodeID, connectDistance, limit float64) []graph.NodeID {
	node := g.NodeMut(id)
	atCap := isCap(g, id)

	best := make(map[int32]connectCandidate)
	it := index.IterNearest(node.Point, spatial.Geodesic)
	for {
		item, d, ok := it.Next()
		if !ok || d > limit {
			break
		}

		e := g.EdgeMut(item.Value)
		if e.IsConnector || e.OriginalRoadID == node.OriginalRoadID ||
			(e.MainNumber == node.MainNumber && e.SubNumber == node.SubNumber) {
			continue
		}

		from, to, _ := g.Endpoints(item.Value)
		dist := geo.PointSegmentDistanceApprox(node.Point, g.NodeMut(from).Point, g.NodeMut(to).Point)
		if dist >= connectDistance {
			continue
		}
		if prev, seen := best[e.OriginalRoadID]; seen && prev.distance <= dist {
			continue
		}
		best[e.OriginalRoadID] = connectCandidate{edge: item.Value, from: from, to: to, distance: dist}
	}

	candidates := make([]connectCandidate, 0, len(best))
	for _, c := range best {
		candidates = append(candidates, c)
	}
	slices.SortFunc(candidates, func(a, b connectCandidate) int {
		return cmp.Or(cmp.Compare(a.distance, b.distance), cmp.Compare(a.edge, b.edge))
	})

	var out []graph.NodeID
	for _, c := range candidates {
		start, end := g.NodeMut(c.from).Point, g.NodeMut(c.to).Point
		target := nearer(node.Point, c.from, start, c.to, end)

		if !atCap {
			if math.Abs(geo.AngleDiff(geo.Heading(start, end), node.Heading)) > alignedHeadingDeg {
				continue
			}
			startOff := math.Abs(geo.AngleDiff(geo.Heading(node.Point, start), node.Heading)) > coneHeadingDeg
			endOff := math.Abs(geo.AngleDiff(geo.Heading(node.Point, end), node.Heading)) > coneHeadingDeg
			switch {
			case startOff && endOff:
				continue
			case startOff:
				target = c.to
			case endOff:
				target = c.from
			}
		}

		if target != id {
			out = append(out, target)
		}
	}

	return out
}

func nearer(p entity.Point, a graph.NodeID, pa entity.Point, b graph.NodeID, pb entity.Point) graph.NodeID {
	if geo.Distance(p, pb) < geo.Distance(p, pa) {
		return b
	}

	return a
}

func connector(a, b entity.Point) graph.Edge {
	return graph.Edge{
		Distance:       geo.Distance(a, b),
		IsConnector:    true,
		Midpoint:       geo.Midpoint(a, b),
		Direction:      entity.DirectionBoth,
		OriginalRoadID: graph.ConnectorRoadID,
	}
}
