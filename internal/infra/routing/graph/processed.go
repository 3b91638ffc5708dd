package graph

import (
	"slices"
	"sort"

	"roadnet/internal/domain/entity"
)

// SensorStore lists the sensor channels attached to each node.
type SensorStore map[NodeID][]entity.SensorMetadata

// Add appends a sensor channel to node n.
func (s SensorStore) Add(n NodeID, meta entity.SensorMetadata) {
	s[n] = append(s[n], meta)
}

// Nodes returns the nodes with at least one sensor, ascending.
func (s SensorStore) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(s))
	for id, sensors := range s {
		if len(sensors) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// SiteIDs returns every distinct site id in the store.
func (s SensorStore) SiteIDs() []int32 {
	seen := make(map[int32]struct{})
	for _, sensors := range s {
		for _, m := range sensors {
			seen[m.SiteID] = struct{}{}
		}
	}

	out := make([]int32, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)

	return out
}

// Clone deep-copies the store.
func (s SensorStore) Clone() SensorStore {
	c := make(SensorStore, len(s))
	for id, sensors := range s {
		c[id] = slices.Clone(sensors)
	}

	return c
}

// ProcessedGraph is the output of the topology pipeline: the simplified
// graph plus the sensor channels attached to its nodes.
type ProcessedGraph struct {
	Graph   *Graph
	Sensors SensorStore
}

// NewProcessed wraps g with an empty sensor store.
func NewProcessed(g *Graph) *ProcessedGraph {
	return &ProcessedGraph{Graph: g, Sensors: make(SensorStore)}
}

// Clone deep-copies the graph and the sensor store.
func (pg *ProcessedGraph) Clone() *ProcessedGraph {
	return &ProcessedGraph{Graph: pg.Graph.Clone(), Sensors: pg.Sensors.Clone()}
}

// SensorNodes returns every node carrying a sensor reading or a store
// entry, ascending.
func (pg *ProcessedGraph) SensorNodes() []NodeID {
	seen := make(map[NodeID]struct{})
	for _, id := range pg.Graph.NodeIDs() {
		if n := pg.Graph.NodeMut(id); n.HasSensor() {
			seen[id] = struct{}{}
		}
	}
	for _, id := range pg.Sensors.Nodes() {
		if pg.Graph.HasNode(id) {
			seen[id] = struct{}{}
		}
	}

	out := make([]NodeID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)

	return out
}

// Stats summarises a processed graph.
type Stats struct {
	Nodes          int     `json:"nodes"`
	Edges          int     `json:"edges"`
	Connectors     int     `json:"connectors"`
	SensorNodes    int     `json:"sensor_nodes"`
	Caps           int     `json:"caps"`
	TotalDistanceM float64 `json:"total_distance_m"`
	LongestEdgeM   float64 `json:"longest_edge_m"`
}

// Stats computes summary counts over the live graph.
func (pg *ProcessedGraph) Stats() Stats {
	g := pg.Graph
	st := Stats{Nodes: g.NodeCount(), Edges: g.EdgeCount(), SensorNodes: len(pg.SensorNodes())}

	for _, id := range g.NodeIDs() {
		if g.NodeMut(id).IsCap {
			st.Caps++
		}
	}
	for _, id := range g.EdgeIDs() {
		e := g.EdgeMut(id)
		if e.IsConnector {
			st.Connectors++
		}
		st.TotalDistanceM += e.Distance
		st.LongestEdgeM = max(st.LongestEdgeM, e.Distance)
	}

	return st
}
