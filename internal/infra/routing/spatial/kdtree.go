// Package spatial provides the point indexes used by the topology passes and
// waypoint resolution: a generic 2-D k-d tree with lazy ordered-nearest
// iteration, and an r-tree corridor over path segments.
package spatial

import (
	"container/heap"
	"math"
	"sort"

	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/routing/geo"
)

// Metric measures the distance between two positions. The tree prunes a
// subtree with the least metric value over a few candidate points of its
// bounding box, see boxBound. That is exact for squared euclidean distance
// and for geodesic distance at any box size.
type Metric func(a, b entity.Point) float64

// boundSlack absorbs floating point noise in the box bound.
const boundSlack = 1e-9

// Index-native and geodesic metrics.
var (
	SquaredEuclidean Metric = geo.SquaredEuclidean
	Geodesic         Metric = geo.Distance
)

// Item is one indexed position and its payload.
type Item[T any] struct {
	Point entity.Point
	Value T
}

type kdNode struct {
	item        int32 // index into items
	left, right int32 // -1 when absent
	minLat      float64
	maxLat      float64
	minLon      float64
	maxLon      float64
}

// KDTree is an immutable k-d tree over (lat, lon). It is safe for
// concurrent reads.
type KDTree[T any] struct {
	items []Item[T]
	nodes []kdNode
	root  int32
}

// New builds a tree from the given items. Items are copied.
func New[T any](items []Item[T]) *KDTree[T] {
	tree := &KDTree[T]{
		items: append([]Item[T](nil), items...),
		nodes: make([]kdNode, 0, len(items)),
		root:  -1,
	}

	order := make([]int32, len(items))
	for i := range order {
		order[i] = int32(i)
	}
	tree.root = tree.build(order, 0)

	return tree
}

// NewFrom builds a tree by projecting each value to its position.
func NewFrom[T any](values []T, pointOf func(T) entity.Point) *KDTree[T] {
	items := make([]Item[T], len(values))
	for i, v := range values {
		items[i] = Item[T]{Point: pointOf(v), Value: v}
	}

	return New(items)
}

func (t *KDTree[T]) build(order []int32, depth int) int32 {
	if len(order) == 0 {
		return -1
	}

	byLat := depth%2 == 0
	sort.Slice(order, func(i, j int) bool {
		a, b := t.items[order[i]].Point, t.items[order[j]].Point
		if byLat {
			if a.Latitude != b.Latitude {
				return a.Latitude < b.Latitude
			}

			return order[i] < order[j]
		}
		if a.Longitude != b.Longitude {
			return a.Longitude < b.Longitude
		}

		return order[i] < order[j]
	})

	mid := len(order) / 2
	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, kdNode{item: order[mid], left: -1, right: -1})

	left := t.build(order[:mid], depth+1)
	right := t.build(order[mid+1:], depth+1)

	p := t.items[order[mid]].Point
	n := &t.nodes[idx]
	n.left, n.right = left, right
	n.minLat, n.maxLat = p.Latitude, p.Latitude
	n.minLon, n.maxLon = p.Longitude, p.Longitude
	for _, child := range []int32{left, right} {
		if child < 0 {
			continue
		}
		c := t.nodes[child]
		n.minLat = math.Min(n.minLat, c.minLat)
		n.maxLat = math.Max(n.maxLat, c.maxLat)
		n.minLon = math.Min(n.minLon, c.minLon)
		n.maxLon = math.Max(n.maxLon, c.maxLon)
	}

	return idx
}

// Len returns the number of indexed items.
func (t *KDTree[T]) Len() int {
	return len(t.items)
}

// Items returns the indexed items in insertion order.
func (t *KDTree[T]) Items() []Item[T] {
	return t.items
}

// Iterator lazily yields items in non-decreasing metric order. Ties are
// broken by insertion order.
type Iterator[T any] struct {
	tree   *KDTree[T]
	query  entity.Point
	metric Metric
	queue  entryQueue
}

// IterNearest starts an ordered-nearest walk from p. Callers stop as soon as
// the yielded distance passes their threshold.
func (t *KDTree[T]) IterNearest(p entity.Point, metric Metric) *Iterator[T] {
	it := &Iterator[T]{tree: t, query: p, metric: metric}
	if t.root >= 0 {
		it.pushNode(t.root)
	}

	return it
}

func (it *Iterator[T]) pushNode(idx int32) {
	bound := boxBound(it.query, &it.tree.nodes[idx], it.metric) * (1 - boundSlack)
	heap.Push(&it.queue, queueEntry{dist: bound, ref: idx, isNode: true})
}

// boxBound is the least metric value from q over n's bounding box. Squared
// euclidean distance is least at the degree-space clamp of q. Geodesic
// distance is least along q's own meridian when the box spans q's longitude,
// otherwise on one of the two bounding meridians.
func boxBound(q entity.Point, n *kdNode, metric Metric) float64 {
	clampLat := func(lat float64) float64 { return math.Max(n.minLat, math.Min(n.maxLat, lat)) }

	best := metric(q, entity.Point{
		Latitude:  clampLat(q.Latitude),
		Longitude: math.Max(n.minLon, math.Min(n.maxLon, q.Longitude)),
	})
	if q.Longitude >= n.minLon && q.Longitude <= n.maxLon {
		return best
	}

	for _, lon := range [2]float64{n.minLon, n.maxLon} {
		if foot, ok := meridianFoot(q, lon); ok {
			best = math.Min(best, metric(q, entity.Point{Latitude: clampLat(foot), Longitude: lon}))

			continue
		}
		// Beyond a quarter turn the distance along the meridian peaks
		// inside the segment, so the least value is at an end.
		best = math.Min(best, metric(q, entity.Point{Latitude: n.minLat, Longitude: lon}))
		best = math.Min(best, metric(q, entity.Point{Latitude: n.maxLat, Longitude: lon}))
	}

	return best
}

// meridianFoot is the latitude of the point on meridian lon nearest to q
// along a great circle. It reports false when lon is a quarter turn or more
// away from q, where no such interior point exists.
func meridianFoot(q entity.Point, lon float64) (float64, bool) {
	lat := q.Latitude * math.Pi / 180
	cosDLon := math.Cos((lon - q.Longitude) * math.Pi / 180)
	if cosDLon <= 0 {
		return 0, false
	}

	return math.Atan2(math.Sin(lat), math.Cos(lat)*cosDLon) * 180 / math.Pi, true
}

// Next returns the next nearest item and its distance, or false when the
// tree is exhausted.
func (it *Iterator[T]) Next() (Item[T], float64, bool) {
	for it.queue.Len() > 0 {
		e := heap.Pop(&it.queue).(queueEntry)
		if !e.isNode {
			return it.tree.items[e.ref], e.dist, true
		}

		n := it.tree.nodes[e.ref]
		item := it.tree.items[n.item]
		heap.Push(&it.queue, queueEntry{dist: it.metric(it.query, item.Point), ref: n.item})
		if n.left >= 0 {
			it.pushNode(n.left)
		}
		if n.right >= 0 {
			it.pushNode(n.right)
		}
	}

	return Item[T]{}, 0, false
}

// Neighbor is a query result with its distance from the query point.
type Neighbor[T any] struct {
	Item[T]
	Distance float64
}

// NearestK returns up to k items closest to p.
func (t *KDTree[T]) NearestK(p entity.Point, k int, metric Metric) []Neighbor[T] {
	if k <= 0 {
		return nil
	}

	out := make([]Neighbor[T], 0, min(k, t.Len()))
	it := t.IterNearest(p, metric)
	for len(out) < k {
		item, dist, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, Neighbor[T]{Item: item, Distance: dist})
	}

	return out
}

// Nearest returns the single closest item to p.
func (t *KDTree[T]) Nearest(p entity.Point, metric Metric) (Neighbor[T], bool) {
	item, dist, ok := t.IterNearest(p, metric).Next()

	return Neighbor[T]{Item: item, Distance: dist}, ok
}

// Within returns every item whose distance from p is at most radius, nearest first.
func (t *KDTree[T]) Within(p entity.Point, radius float64, metric Metric) []Neighbor[T] {
	var out []Neighbor[T]
	it := t.IterNearest(p, metric)
	for {
		item, dist, ok := it.Next()
		if !ok || dist > radius {
			return out
		}
		out = append(out, Neighbor[T]{Item: item, Distance: dist})
	}
}

type queueEntry struct {
	dist   float64
	ref    int32
	isNode bool
}

// entryQueue orders by distance; at equal distance subtrees expand before
// items are yielded so equal-distance items come out by insertion index.
type entryQueue []queueEntry

func (q entryQueue) Len() int { return len(q) }

func (q entryQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	if q[i].isNode != q[j].isNode {
		return q[i].isNode
	}

	return q[i].ref < q[j].ref
}

func (q entryQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *entryQueue) Push(x any) { *q = append(*q, x.(queueEntry)) }

func (q *entryQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]

	return e
}
