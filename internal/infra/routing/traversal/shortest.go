package traversal

import (
	"roadnet/internal/errors"
	"roadnet/internal/infra/routing/graph"
)

var (
	// ErrNoPath is returned when the target cannot be reached from the start.
	ErrNoPath = errors.New("no path")
	// ErrEmptyWaypoints is returned when a route has no waypoints at all.
	ErrEmptyWaypoints = errors.New("no waypoints")
)

// Path is a route through the graph. Missed lists the waypoints that could
// not be reached; Complete is false when there are any.
type Path struct {
	Nodes    []graph.NodeID `json:"nodes"`
	Length   float64        `json:"length"`
	Complete bool           `json:"complete"`
	Missed   []graph.NodeID `json:"missed,omitempty"`
}

// ShortestPathSingle finds the cheapest path from one node to another.
func ShortestPathSingle(g *graph.Graph, from, to graph.NodeID, metric Metric, opts ...Option) (Path, error) {
	if !g.HasNode(from) {
		return Path{}, errors.AtNode(graph.ErrNodeNotFound, "start", from)
	}
	if !g.HasNode(to) {
		return Path{}, errors.AtNode(graph.ErrNodeNotFound, "target", to)
	}

	s := NewSearch(g, from, metric, opts...)
	for {
		v, ok := s.Next()
		if !ok {
			return Path{}, errors.AtEdge(ErrNoPath, from, to)
		}
		if v.Node == to {
			return Path{Nodes: s.Path(to), Length: v.Cost, Complete: true}, nil
		}
	}
}

// ShortestPath stitches the cheapest paths between consecutive waypoints.
// A waypoint that cannot be reached is recorded in Missed and the next leg
// starts again from the last waypoint that was reached.
func ShortestPath(g *graph.Graph, waypoints []graph.NodeID, metric Metric, opts ...Option) (Path, error) {
	if len(waypoints) == 0 {
		return Path{}, ErrEmptyWaypoints
	}

	start := waypoints[0]
	if !g.HasNode(start) {
		return Path{}, errors.AtNode(graph.ErrNodeNotFound, "start", start)
	}

	route := Path{Complete: true}
	for _, end := range waypoints[1:] {
		leg, err := ShortestPathSingle(g, start, end, metric, opts...)
		if err != nil {
			route.Missed = append(route.Missed, end)
			route.Complete = false

			continue
		}

		route.Nodes = append(route.Nodes, leg.Nodes[:len(leg.Nodes)-1]...)
		route.Length += leg.Length
		start = end
	}
	route.Nodes = append(route.Nodes, start)

	return route, nil
}

// PathDistance sums, for each consecutive pair of path nodes, the length of
// the shortest edge joining them.
func PathDistance(g *graph.Graph, path []graph.NodeID) (float64, error) {
	var total float64
	for i := 1; i < len(path); i++ {
		e, err := cheapestEdge(g, path[i-1], path[i])
		if err != nil {
			return 0, err
		}
		total += e.Distance
	}

	return total, nil
}

func cheapestEdge(g *graph.Graph, a, b graph.NodeID) (*graph.Edge, error) {
	var best *graph.Edge
	for _, id := range g.EdgesConnecting(a, b) {
		if e := g.EdgeMut(id); best == nil || e.Distance < best.Distance {
			best = e
		}
	}
	if best == nil {
		return nil, errors.AtEdge(graph.ErrEdgeNotFound, a, b)
	}

	return best, nil
}
