package spatial

import (
	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/routing/graph"
)

// NodeIndex indexes every live node of g by position.
func NodeIndex(g *graph.Graph) *KDTree[graph.NodeID] {
	ids := g.NodeIDs()
	items := make([]Item[graph.NodeID], 0, len(ids))
	for _, id := range ids {
		items = append(items, Item[graph.NodeID]{Point: g.NodeMut(id).Point, Value: id})
	}

	return New(items)
}

// EdgeIndex indexes the midpoints of the live edges of g that keep accepts.
// A nil filter keeps every edge.
func EdgeIndex(g *graph.Graph, keep func(id graph.EdgeID, e *graph.Edge) bool) *KDTree[graph.EdgeID] {
	ids := g.EdgeIDs()
	items := make([]Item[graph.EdgeID], 0, len(ids))
	for _, id := range ids {
		e := g.EdgeMut(id)
		if keep != nil && !keep(id, e) {
			continue
		}
		items = append(items, Item[graph.EdgeID]{Point: e.Midpoint, Value: id})
	}

	return New(items)
}

// SensorIndex indexes samples by location; values are slice indices.
func SensorIndex(samples []entity.SensorSample) *KDTree[int] {
	items := make([]Item[int], len(samples))
	for i, s := range samples {
		items[i] = Item[int]{Point: s.Point, Value: i}
	}

	return New(items)
}
