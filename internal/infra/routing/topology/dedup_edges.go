package topology

import (
	"roadnet/internal/infra/progress"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/spatial"
)

// coincident is the squared degree distance below which two midpoints are
// treated as the same position.
const coincident = 1e-18

// DedupEdges removes road edges that repeat another edge between the same
// two positions, in either orientation. The opposite lane of a two-way road,
// which joins the same two nodes in reverse, is not a duplicate. Connectors
// are left alone. Returns the number of removed edges.
func DedupEdges(g *graph.Graph, obs progress.Observer) int {
	obs = progress.OrNoop(obs)
	isRoad := func(_ graph.EdgeID, e *graph.Edge) bool { return !e.IsConnector }
	index := spatial.EdgeIndex(g, isRoad)

	marked := make(map[graph.EdgeID]struct{})
	for _, item := range index.Items() {
		obs.Tick(StepDedupEdges, 1)
		id := item.Value
		if _, ok := marked[id]; ok {
			continue
		}
		from, to, _ := g.Endpoints(id)
		a, b := g.NodeMut(from).Point, g.NodeMut(to).Point

		it := index.IterNearest(item.Point, spatial.SquaredEuclidean)
		for {
			other, d, ok := it.Next()
			if !ok || d > coincident {
				break
			}
			if other.Value == id {
				continue
			}
			if _, ok := marked[other.Value]; ok {
				continue
			}

			of, ot, _ := g.Endpoints(other.Value)
			if of == to && ot == from {
				continue
			}
			oa, ob := g.NodeMut(of).Point, g.NodeMut(ot).Point
			if (oa == a && ob == b) || (oa == b && ob == a) {
				marked[other.Value] = struct{}{}
			}
		}
	}

	for id := range marked {
		g.RemoveEdge(id)
	}

	return len(marked)
}
