package traversal

import (
	"math"
	"slices"
	"sort"

	"roadnet/internal/infra/routing/graph"

	"github.com/bits-and-blooms/bitset"
)

// Option configures a search.
type Option func(*options)

type options struct {
	defaultSpeedKmh float64
	undirected      bool
}

// WithDefaultSpeed sets the speed assumed before the first edge with a
// speed limit is crossed. Without it such edges are impassable under Time.
func WithDefaultSpeed(kmh float64) Option {
	return func(o *options) { o.defaultSpeedKmh = kmh }
}

// Undirected makes searches follow edges against their direction too.
func Undirected() Option {
	return func(o *options) { o.undirected = true }
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

type frontierEntry struct {
	node   graph.NodeID
	parent graph.NodeID
	cost   float64
	kmh    float64
}

// Visit is a node settled by a search together with its final cost.
type Visit struct {
	Node graph.NodeID
	Cost float64
}

// Search is a best-first search from one start node. The frontier is a
// slice kept sorted by accumulated cost; entries with equal cost leave in
// insertion order. A node is settled the first time it is popped and later
// entries for it are dropped.
type Search struct {
	g          *graph.Graph
	metric     Metric
	undirected bool

	frontier   []frontierEntry
	discovered *bitset.BitSet
	costs      map[graph.NodeID]float64
	parents    map[graph.NodeID]graph.NodeID
}

// NewSearch starts a search at start. start must be a live node.
func NewSearch(g *graph.Graph, start graph.NodeID, metric Metric, opts ...Option) *Search {
	o := collect(opts)

	return &Search{
		g:          g,
		metric:     metric,
		undirected: o.undirected,
		frontier:   []frontierEntry{{node: start, parent: graph.NoNode, kmh: o.defaultSpeedKmh}},
		discovered: bitset.New(uint(g.NodeBound())),
		costs:      make(map[graph.NodeID]float64),
		parents:    make(map[graph.NodeID]graph.NodeID),
	}
}

// Next settles the cheapest undiscovered node on the frontier, following
// outgoing edges (or every incident edge when the search is undirected).
// It returns false once the frontier is empty.
func (s *Search) Next() (Visit, bool) {
	return s.next(s.undirected)
}

// NextUndirected is Next following edges in both directions regardless of
// how the search was configured.
func (s *Search) NextUndirected() (Visit, bool) {
	return s.next(true)
}

func (s *Search) next(undirected bool) (Visit, bool) {
	for len(s.frontier) > 0 {
		cur := s.frontier[0]
		s.frontier = s.frontier[1:]

		if s.discovered.Test(uint(cur.node)) {
			continue
		}
		s.discovered.Set(uint(cur.node))
		s.costs[cur.node] = cur.cost
		s.parents[cur.node] = cur.parent

		s.expand(cur, s.g.Outgoing(cur.node), false)
		if undirected {
			s.expand(cur, s.g.Incoming(cur.node), true)
		}

		return Visit{Node: cur.node, Cost: cur.cost}, true
	}

	return Visit{}, false
}

func (s *Search) expand(cur frontierEntry, edges []graph.EdgeID, incoming bool) {
	for _, id := range edges {
		from, to, _ := s.g.Endpoints(id)
		next := to
		if incoming {
			next = from
		}
		if s.discovered.Test(uint(next)) {
			continue
		}

		step, kmh := s.metric.Cost(s.g.EdgeMut(id), cur.kmh)
		if math.IsInf(step, 1) {
			continue
		}
		s.insert(frontierEntry{node: next, parent: cur.node, cost: cur.cost + step, kmh: kmh})
	}
}

// insert places e after every entry whose cost is not greater than its own.
func (s *Search) insert(e frontierEntry) {
	i := sort.Search(len(s.frontier), func(i int) bool { return s.frontier[i].cost > e.cost })
	s.frontier = slices.Insert(s.frontier, i, e)
}

// Discovered reports whether n has been settled.
func (s *Search) Discovered(n graph.NodeID) bool {
	return n >= 0 && s.discovered.Test(uint(n))
}

// Distances returns the cost of every settled node. The map is shared with
// the search.
func (s *Search) Distances() map[graph.NodeID]float64 {
	return s.costs
}

// Path returns the nodes from the start to n inclusive, or nil when n has
// not been settled.
func (s *Search) Path(n graph.NodeID) []graph.NodeID {
	if !s.Discovered(n) {
		return nil
	}

	var path []graph.NodeID
	for cur := n; cur != graph.NoNode; cur = s.parents[cur] {
		path = append(path, cur)
	}
	slices.Reverse(path)

	return path
}
