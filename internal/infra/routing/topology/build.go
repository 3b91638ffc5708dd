// Package topology turns road centerlines and sensor samples into a routable
// graph: Build creates one node per vertex and one edge per consecutive
// vertex pair, and the passes in this package then simplify the result.
// Process runs the whole pipeline.
package topology

import (
	"slices"

	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/routing/geo"
	"roadnet/internal/infra/routing/graph"
)

// Build creates the raw road graph. Backward roads are reversed before
// their edges are laid; two-way roads get a reverse edge for every forward
// edge. Node headings and cap flags are filled in before returning.
func Build(roads []entity.RoadSegment) *graph.Graph {
	var vertices int
	for _, r := range roads {
		vertices += len(r.Coordinates)
	}

	g := graph.NewWithCapacity(vertices, vertices)
	twins := make(map[graph.EdgeID]struct{})

	for _, r := range roads {
		coords := r.Coordinates
		if r.Direction == entity.DirectionBackward {
			coords = slices.Clone(coords)
			slices.Reverse(coords)
		}

		prev := graph.NoNode
		for _, c := range coords {
			id := g.AddNode(graph.Node{
				Point:          c,
				Direction:      r.Direction,
				MainNumber:     r.MainNumber,
				SubNumber:      r.SubNumber,
				OriginalRoadID: r.UniqueID,
			})

			if prev != graph.NoNode {
				e := roadEdge(g.NodeMut(prev), g.NodeMut(id), r)
				g.AddEdge(prev, id, e)
				if r.Direction == entity.DirectionBoth {
					twins[g.AddEdge(id, prev, reversed(e))] = struct{}{}
				}
			}
			prev = id
		}
	}

	computeHeadings(g, twins)
	refreshCaps(g)

	return g
}

func roadEdge(from, to *graph.Node, r entity.RoadSegment) graph.Edge {
	e := graph.Edge{
		Distance:       geo.Distance(from.Point, to.Point),
		MainNumber:     r.MainNumber,
		SubNumber:      r.SubNumber,
		Polyline:       []entity.Point{from.Point, to.Point},
		Midpoint:       geo.Midpoint(from.Point, to.Point),
		Direction:      directionBetween(from, to),
		OriginalRoadID: r.UniqueID,
	}
	if r.SpeedLimit > 0 {
		limit := r.SpeedLimit
		e.SpeedLimit = &limit
	}

	return e
}

func reversed(e graph.Edge) graph.Edge {
	r := e
	r.Polyline = slices.Clone(e.Polyline)
	slices.Reverse(r.Polyline)
	if e.SpeedLimit != nil {
		limit := *e.SpeedLimit
		r.SpeedLimit = &limit
	}

	return r
}

// directionBetween is the shared direction of both nodes, or Both when
// they disagree.
func directionBetween(a, b *graph.Node) entity.RoadDirection {
	if a.Direction == b.Direction {
		return a.Direction
	}

	return entity.DirectionBoth
}

// computeHeadings sets every node heading to the circular mean of the
// bearings of its incident edges. Reverse lanes of two-way roads are left
// out so that a lane and its twin do not cancel each other.
func computeHeadings(g *graph.Graph, skip map[graph.EdgeID]struct{}) {
	var headings []float64
	for _, id := range g.NodeIDs() {
		headings = headings[:0]
		for _, edges := range [][]graph.EdgeID{g.Incoming(id), g.Outgoing(id)} {
			for _, e := range edges {
				if _, ok := skip[e]; ok {
					continue
				}
				from, to, _ := g.Endpoints(e)
				headings = append(headings, geo.Heading(g.NodeMut(from).Point, g.NodeMut(to).Point))
			}
		}
		g.NodeMut(id).Heading = geo.AngleAverage(headings)
	}
}

// isCap reports whether n touches exactly one other node.
func isCap(g *graph.Graph, n graph.NodeID) bool {
	other := graph.NoNode
	for _, nb := range g.Neighbors(n, graph.Undirected) {
		switch {
		case nb == n:
		case other == graph.NoNode:
			other = nb
		case nb != other:
			return false
		}
	}

	return other != graph.NoNode
}

func refreshCaps(g *graph.Graph) {
	for _, id := range g.NodeIDs() {
		g.NodeMut(id).IsCap = isCap(g, id)
	}
}
