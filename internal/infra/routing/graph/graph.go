// Package graph is the road network store: a directed multigraph kept in an
// arena of node and edge slots. Identifiers are slot indices; removing a
// node or edge only invalidates its own slot, so every other id stays valid
// across removals and ids are never reused.
package graph

import (
	"fmt"
	"slices"

	"roadnet/internal/domain/entity"

	"github.com/pkg/errors"
)

var (
	// ErrNodeNotFound is returned when a node id does not reference a live node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrEdgeNotFound is returned when an edge id does not reference a live edge.
	ErrEdgeNotFound = errors.New("edge not found")
)

// NodeID identifies a node slot.
type NodeID int32

// EdgeID identifies an edge slot.
type EdgeID int32

// Sentinel ids for "no node" and "no edge".
const (
	NoNode NodeID = -1
	NoEdge EdgeID = -1
)

// ConnectorRoadID is the road id carried by connector edges and by edges
// synthesised from several source roads.
const ConnectorRoadID int32 = -1

// Node is a graph vertex.
type Node struct {
	Point          entity.Point         `json:"point"`
	Direction      entity.RoadDirection `json:"direction"`
	Sensor         *entity.SensorSample `json:"sensor,omitempty"`
	MainNumber     int32                `json:"main_number"`
	SubNumber      int32                `json:"sub_number"`
	OriginalRoadID int32                `json:"original_road_id"`
	Heading        float64              `json:"heading"` // valid only after the heading pass
	IsCap          bool                 `json:"is_cap"`
}

// HasSensor reports whether a sensor reading is attached.
func (n *Node) HasSensor() bool {
	return n.Sensor != nil
}

// Edge is a directed road segment or connector.
type Edge struct {
	Distance       float64              `json:"distance"` // metres
	MainNumber     int32                `json:"main_number"`
	SubNumber      int32                `json:"sub_number"`
	Polyline       []entity.Point       `json:"polyline"`
	IsConnector    bool                 `json:"is_connector"`
	Midpoint       entity.Point         `json:"midpoint"`
	Direction      entity.RoadDirection `json:"direction"`
	OriginalRoadID int32                `json:"original_road_id"`
	SpeedLimit     *float64             `json:"speed_limit,omitempty"` // km/h, nil on connectors
}

// SameRoad reports whether both edges carry the same main/sub road number.
func (e *Edge) SameRoad(other *Edge) bool {
	return e.MainNumber == other.MainNumber && e.SubNumber == other.SubNumber
}

// SpeedLimitOr returns the speed limit or fallback when there is none.
func (e *Edge) SpeedLimitOr(fallback float64) float64 {
	if e.SpeedLimit == nil {
		return fallback
	}

	return *e.SpeedLimit
}

// Direction selects which incident edges a neighbour query follows.
type Direction uint8

const (
	Outgoing Direction = iota
	Incoming
	Undirected
)

type nodeSlot struct {
	data  Node
	in    []EdgeID
	out   []EdgeID
	valid bool
}

type edgeSlot struct {
	data     Edge
	from, to NodeID
	valid    bool
}

// Graph is the arena-backed multigraph. It is not safe for concurrent
// mutation; concurrent reads without writers are fine.
type Graph struct {
	nodes     []nodeSlot
	edges     []edgeSlot
	nodeCount int
	edgeCount int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// NewWithCapacity returns an empty graph with preallocated slots.
func NewWithCapacity(nodes, edges int) *Graph {
	return &Graph{
		nodes: make([]nodeSlot, 0, nodes),
		edges: make([]edgeSlot, 0, edges),
	}
}

// AddNode stores n and returns its id.
func (g *Graph) AddNode(n Node) NodeID {
	g.nodes = append(g.nodes, nodeSlot{data: n, valid: true})
	g.nodeCount++

	return NodeID(len(g.nodes) - 1)
}

// AddEdge stores e from -> to and returns its id. Both endpoints must be
// live nodes; anything else is a programming error and panics.
func (g *Graph) AddEdge(from, to NodeID, e Edge) EdgeID {
	if !g.HasNode(from) || !g.HasNode(to) {
		panic(fmt.Sprintf("graph: AddEdge with invalid endpoint %d -> %d", from, to))
	}

	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, edgeSlot{data: e, from: from, to: to, valid: true})
	g.nodes[from].out = append(g.nodes[from].out, id)
	g.nodes[to].in = append(g.nodes[to].in, id)
	g.edgeCount++

	return id
}

// RemoveEdge invalidates the edge and unlinks it from its endpoints.
// It reports whether the edge was live.
func (g *Graph) RemoveEdge(id EdgeID) bool {
	if !g.HasEdge(id) {
		return false
	}

	slot := &g.edges[id]
	g.nodes[slot.from].out = removeID(g.nodes[slot.from].out, id)
	g.nodes[slot.to].in = removeID(g.nodes[slot.to].in, id)
	slot.valid = false
	slot.data = Edge{}
	g.edgeCount--

	return true
}

// RemoveNode invalidates the node together with every incident edge.
// It reports whether the node was live.
func (g *Graph) RemoveNode(id NodeID) bool {
	if !g.HasNode(id) {
		return false
	}

	for _, e := range slices.Clone(g.nodes[id].out) {
		g.RemoveEdge(e)
	}
	for _, e := range slices.Clone(g.nodes[id].in) {
		g.RemoveEdge(e)
	}

	g.nodes[id] = nodeSlot{}
	g.nodeCount--

	return true
}

func removeID(ids []EdgeID, id EdgeID) []EdgeID {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}

	return ids
}

// HasNode reports whether id references a live node.
func (g *Graph) HasNode(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes) && g.nodes[id].valid
}

// HasEdge reports whether id references a live edge.
func (g *Graph) HasEdge(id EdgeID) bool {
	return id >= 0 && int(id) < len(g.edges) && g.edges[id].valid
}

// Node returns a copy of the node.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if !g.HasNode(id) {
		return Node{}, false
	}

	return g.nodes[id].data, true
}

// NodeMut returns a pointer to the stored node, or nil if it is not live.
// The pointer is invalidated by the next AddNode.
func (g *Graph) NodeMut(id NodeID) *Node {
	if !g.HasNode(id) {
		return nil
	}

	return &g.nodes[id].data
}

// Edge returns a copy of the edge. The polyline is shared with the store.
func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	if !g.HasEdge(id) {
		return Edge{}, false
	}

	return g.edges[id].data, true
}

// EdgeMut returns a pointer to the stored edge, or nil if it is not live.
// The pointer is invalidated by the next AddEdge.
func (g *Graph) EdgeMut(id EdgeID) *Edge {
	if !g.HasEdge(id) {
		return nil
	}

	return &g.edges[id].data
}

// Endpoints returns the source and target of a live edge.
func (g *Graph) Endpoints(id EdgeID) (from, to NodeID, ok bool) {
	if !g.HasEdge(id) {
		return NoNode, NoNode, false
	}

	return g.edges[id].from, g.edges[id].to, true
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int { return g.nodeCount }

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int { return g.edgeCount }

// NodeBound is one past the highest node id ever allocated.
func (g *Graph) NodeBound() int { return len(g.nodes) }

// EdgeBound is one past the highest edge id ever allocated.
func (g *Graph) EdgeBound() int { return len(g.edges) }

// NodeIDs returns the live node ids in ascending order.
func (g *Graph) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, g.nodeCount)
	for i := range g.nodes {
		if g.nodes[i].valid {
			ids = append(ids, NodeID(i))
		}
	}

	return ids
}

// EdgeIDs returns the live edge ids in ascending order.
func (g *Graph) EdgeIDs() []EdgeID {
	ids := make([]EdgeID, 0, g.edgeCount)
	for i := range g.edges {
		if g.edges[i].valid {
			ids = append(ids, EdgeID(i))
		}
	}

	return ids
}

// Outgoing returns the ids of edges leaving n. The slice belongs to the
// graph and is only valid until the next mutation.
func (g *Graph) Outgoing(n NodeID) []EdgeID {
	if !g.HasNode(n) {
		return nil
	}

	return g.nodes[n].out
}

// Incoming returns the ids of edges entering n. The slice belongs to the
// graph and is only valid until the next mutation.
func (g *Graph) Incoming(n NodeID) []EdgeID {
	if !g.HasNode(n) {
		return nil
	}

	return g.nodes[n].in
}

// Degree returns the in and out degree of n.
func (g *Graph) Degree(n NodeID) (in, out int) {
	if !g.HasNode(n) {
		return 0, 0
	}

	return len(g.nodes[n].in), len(g.nodes[n].out)
}

// EdgesConnecting returns every edge from a to b.
func (g *Graph) EdgesConnecting(a, b NodeID) []EdgeID {
	var ids []EdgeID
	for _, e := range g.Outgoing(a) {
		if g.edges[e].to == b {
			ids = append(ids, e)
		}
	}

	return ids
}

// AreNeighbours reports whether an edge joins a and b in either direction.
func (g *Graph) AreNeighbours(a, b NodeID) bool {
	return len(g.EdgesConnecting(a, b)) > 0 || len(g.EdgesConnecting(b, a)) > 0
}

// Neighbors returns the nodes adjacent to n along dir. A node reachable by
// several edges appears once per edge.
func (g *Graph) Neighbors(n NodeID, dir Direction) []NodeID {
	var out []NodeID
	if dir == Outgoing || dir == Undirected {
		for _, e := range g.Outgoing(n) {
			out = append(out, g.edges[e].to)
		}
	}
	if dir == Incoming || dir == Undirected {
		for _, e := range g.Incoming(n) {
			out = append(out, g.edges[e].from)
		}
	}

	return out
}

// Other returns the endpoint of e opposite to n.
func (g *Graph) Other(e EdgeID, n NodeID) NodeID {
	slot := g.edges[e]
	if slot.from == n {
		return slot.to
	}

	return slot.from
}

// Clone deep-copies the graph, keeping every id.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:     make([]nodeSlot, len(g.nodes)),
		edges:     make([]edgeSlot, len(g.edges)),
		nodeCount: g.nodeCount,
		edgeCount: g.edgeCount,
	}

	for i, slot := range g.nodes {
		slot.in = slices.Clone(slot.in)
		slot.out = slices.Clone(slot.out)
		if slot.data.Sensor != nil {
			sensor := *slot.data.Sensor
			slot.data.Sensor = &sensor
		}
		c.nodes[i] = slot
	}

	for i, slot := range g.edges {
		slot.data.Polyline = slices.Clone(slot.data.Polyline)
		if slot.data.SpeedLimit != nil {
			limit := *slot.data.SpeedLimit
			slot.data.SpeedLimit = &limit
		}
		c.edges[i] = slot
	}

	return c
}

// Retain returns a clone holding only the nodes keep accepts, plus the edges
// between them. Ids are preserved.
func (g *Graph) Retain(keep func(id NodeID, n *Node) bool) *Graph {
	c := g.Clone()
	for _, id := range c.NodeIDs() {
		if !keep(id, &c.nodes[id].data) {
			c.RemoveNode(id)
		}
	}

	return c
}

// Compact renumbers the live nodes and edges into a dense graph. The
// returned map translates old node ids into new ones.
func (g *Graph) Compact() (*Graph, map[NodeID]NodeID) {
	c := NewWithCapacity(g.nodeCount, g.edgeCount)
	mapping := make(map[NodeID]NodeID, g.nodeCount)

	for _, id := range g.NodeIDs() {
		mapping[id] = c.AddNode(g.nodes[id].data)
	}
	for _, id := range g.EdgeIDs() {
		slot := g.edges[id]
		c.AddEdge(mapping[slot.from], mapping[slot.to], slot.data)
	}

	return c.Clone(), mapping
}
