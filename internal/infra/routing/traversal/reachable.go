package traversal

import (
	"roadnet/internal/errors"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/spatial"
)

// Reachable returns the cost of every node reachable from start within
// maxCost. The search stops at the first settled node over the limit.
func Reachable(g *graph.Graph, start graph.NodeID, maxCost float64, metric Metric, opts ...Option) (map[graph.NodeID]float64, error) {
	if !g.HasNode(start) {
		return nil, errors.AtNode(graph.ErrNodeNotFound, "start", start)
	}

	s := NewSearch(g, start, metric, opts...)
	out := make(map[graph.NodeID]float64)
	for {
		v, ok := s.Next()
		if !ok || v.Cost > maxCost {
			return out, nil
		}
		out[v.Node] = v.Cost
	}
}

// CullToReachable returns a copy of pg holding only the nodes reachable
// from start within maxCost. Node ids are preserved.
func CullToReachable(pg *graph.ProcessedGraph, start graph.NodeID, maxCost float64, metric Metric, opts ...Option) (*graph.ProcessedGraph, error) {
	costs, err := Reachable(pg.Graph, start, maxCost, metric, opts...)
	if err != nil {
		return nil, err
	}

	return retain(pg, func(id graph.NodeID) bool {
		_, ok := costs[id]

		return ok
	}), nil
}

// CullToCorridor returns a copy of pg holding only the nodes within radius
// metres of the geometry of path.
func CullToCorridor(pg *graph.ProcessedGraph, path []graph.NodeID, radius float64) (*graph.ProcessedGraph, error) {
	if err := spatial.ValidRadius(radius); err != nil {
		return nil, err
	}
	corridor := spatial.NewCorridor(graph.PathPolyline(pg.Graph, path))

	return retain(pg, func(id graph.NodeID) bool {
		return corridor.Contains(pg.Graph.NodeMut(id).Point, radius)
	}), nil
}

func retain(pg *graph.ProcessedGraph, keep func(graph.NodeID) bool) *graph.ProcessedGraph {
	out := &graph.ProcessedGraph{
		Graph:   pg.Graph.Retain(func(id graph.NodeID, _ *graph.Node) bool { return keep(id) }),
		Sensors: make(graph.SensorStore),
	}
	for id, sensors := range pg.Sensors.Clone() {
		if out.Graph.HasNode(id) {
			out.Sensors[id] = sensors
		}
	}

	return out
}
