package topology

import (
	"roadnet/internal/infra/progress"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/spatial"
)

// MergeOverlap folds nodes lying within threshold metres of a road cap into
// that cap. The folded node's edges are redirected onto the survivor unless
// the survivor already has an edge in that direction to the same neighbour,
// or the redirect would loop back onto the survivor. Returns the number of
// removed nodes.
func MergeOverlap(g *graph.Graph, threshold float64, obs progress.Observer) int {
	obs = progress.OrNoop(obs)
	index := spatial.NodeIndex(g)

	var caps []graph.NodeID
	for _, id := range g.NodeIDs() {
		if isCap(g, id) {
			caps = append(caps, id)
		}
	}

	var removed int
	for _, node := range caps {
		obs.Tick(StepMergeOverlap, 1)
		if !g.HasNode(node) {
			continue
		}

		origin := g.NodeMut(node).Point
		it := index.IterNearest(origin, spatial.Geodesic)
		for {
			item, d, ok := it.Next()
			if !ok || d > threshold {
				break
			}
			other := item.Value
			if other == node || !g.HasNode(other) {
				continue
			}
			absorb(g, node, other)
			removed++
		}
	}

	return removed
}

type redirect struct {
	from, to graph.NodeID
	edge     graph.Edge
}

// absorb moves the edges of other onto node and removes other.
func absorb(g *graph.Graph, node, other graph.NodeID) {
	var moves []redirect
	for _, e := range g.Incoming(other) {
		from, _, _ := g.Endpoints(e)
		if from == node || from == other || len(g.EdgesConnecting(from, node)) > 0 {
			continue
		}
		moves = append(moves, redirect{from: from, to: node, edge: *g.EdgeMut(e)})
	}
	for _, e := range g.Outgoing(other) {
		_, to, _ := g.Endpoints(e)
		if to == node || to == other || len(g.EdgesConnecting(node, to)) > 0 {
			continue
		}
		moves = append(moves, redirect{from: node, to: to, edge: *g.EdgeMut(e)})
	}

	g.RemoveNode(other)
	for _, m := range moves {
		if len(g.EdgesConnecting(m.from, m.to)) > 0 {
			continue
		}
		g.AddEdge(m.from, m.to, m.edge)
	}
}
