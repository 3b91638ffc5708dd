package topology

import (
	"roadnet/internal/infra/progress"
	"roadnet/internal/infra/routing/graph"
)

// RemoveDisjoint keeps only the nodes reachable from a sensor node when
// edges are followed in either direction. Returns the number of removed
// nodes, or ErrNoSensors when there is nothing to seed the search from.
func RemoveDisjoint(pg *graph.ProcessedGraph, obs progress.Observer) (int, error) {
	obs = progress.OrNoop(obs)
	g := pg.Graph

	seeds := pg.SensorNodes()
	if len(seeds) == 0 {
		return 0, ErrNoSensors
	}

	reached := make([]bool, g.NodeBound())
	queue := make([]graph.NodeID, 0, len(seeds))
	for _, s := range seeds {
		reached[s] = true
		queue = append(queue, s)
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		obs.Tick(StepRemoveDisjoint, 1)
		for _, nb := range g.Neighbors(n, graph.Undirected) {
			if !reached[nb] {
				reached[nb] = true
				queue = append(queue, nb)
			}
		}
	}

	var removed int
	for _, id := range g.NodeIDs() {
		if !reached[id] && g.RemoveNode(id) {
			removed++
		}
	}

	return removed, nil
}
