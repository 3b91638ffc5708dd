package topology

import (
	"slices"

	"roadnet/internal/infra/progress"
	"roadnet/internal/infra/routing/graph"
)

// Collapse folds chains of pass-through nodes into single edges using the
// given strategy and returns the number of removed nodes. Sensor nodes and
// nodes touching a connector are never removed.
func Collapse(g *graph.Graph, strategy CollapseStrategy, obs progress.Observer) int {
	obs = progress.OrNoop(obs)

	switch strategy {
	case CollapseNaive:
		var removed int
		for {
			n := collapseNaive(g, obs)
			if n == 0 {
				return removed
			}
			removed += n
		}
	case CollapseForwardOnly:
		return collapseForwardOnly(g, obs)
	default:
		return 0
	}
}

// collapsible reports whether n is a plain pass-through node: no sensor, one
// road edge in and one out of the same source road number, leading to
// different neighbours.
func collapsible(g *graph.Graph, n graph.NodeID) bool {
	node := g.NodeMut(n)
	if node == nil || node.HasSensor() {
		return false
	}

	in, out := g.Incoming(n), g.Outgoing(n)
	if len(in) != 1 || len(out) != 1 {
		return false
	}

	inEdge, outEdge := g.EdgeMut(in[0]), g.EdgeMut(out[0])
	if inEdge.IsConnector || outEdge.IsConnector ||
		inEdge.OriginalRoadID == graph.ConnectorRoadID || outEdge.OriginalRoadID == graph.ConnectorRoadID {
		return false
	}
	if !inEdge.SameRoad(outEdge) {
		return false
	}

	from, _, _ := g.Endpoints(in[0])
	_, to, _ := g.Endpoints(out[0])

	return from != to
}

func collapseNaive(g *graph.Graph, obs progress.Observer) int {
	var removed int
	for _, n := range g.NodeIDs() {
		obs.Tick(StepCollapse, 1)
		if !g.HasNode(n) || !collapsible(g, n) {
			continue
		}

		walked := []graph.NodeID{n}
		var forward, backward []graph.Edge

		end, cycle := n, false
		for cur := n; ; {
			e := g.Outgoing(cur)[0]
			_, next, _ := g.Endpoints(e)
			forward = append(forward, *g.EdgeMut(e))
			if next == n {
				cycle = true

				break
			}
			if !collapsible(g, next) {
				end = next

				break
			}
			walked = append(walked, next)
			cur = next
		}
		if cycle {
			continue
		}

		start := n
		for cur := n; ; {
			e := g.Incoming(cur)[0]
			prev, _, _ := g.Endpoints(e)
			backward = append(backward, *g.EdgeMut(e))
			if !collapsible(g, prev) {
				start = prev

				break
			}
			walked = append(walked, prev)
			cur = prev
		}
		if start == end {
			continue
		}

		slices.Reverse(backward)
		merged := graph.MergeEdges(*g.NodeMut(start), *g.NodeMut(end), append(backward, forward...))

		for _, id := range walked {
			g.RemoveNode(id)
		}
		g.AddEdge(start, end, merged)
		removed += len(walked)
	}

	return removed
}

// nucleus reports whether chains should be grown from n: it carries a
// sensor or does not have exactly one incoming road edge, and it has at
// least one outgoing road edge.
func nucleus(g *graph.Graph, n graph.NodeID) bool {
	var roadIn, roadOut int
	for _, e := range g.Incoming(n) {
		if !g.EdgeMut(e).IsConnector {
			roadIn++
		}
	}
	for _, e := range g.Outgoing(n) {
		if !g.EdgeMut(e).IsConnector {
			roadOut++
		}
	}

	return (g.NodeMut(n).HasSensor() || roadIn != 1) && roadOut > 0
}

func collapseForwardOnly(g *graph.Graph, obs progress.Observer) int {
	var removed int
	for _, start := range g.NodeIDs() {
		obs.Tick(StepCollapse, 1)
		if !g.HasNode(start) || !nucleus(g, start) {
			continue
		}

		for _, first := range slices.Clone(g.Outgoing(start)) {
			if !g.HasEdge(first) || g.EdgeMut(first).IsConnector {
				continue
			}

			_, head, _ := g.Endpoints(first)
			chain := []graph.Edge{*g.EdgeMut(first)}
			var walked []graph.NodeID
			for !g.NodeMut(head).HasSensor() {
				in, out := g.Degree(head)
				if out != 1 || in > 1 {
					break
				}
				e := g.Outgoing(head)[0]
				if g.EdgeMut(e).IsConnector {
					break
				}
				_, next, _ := g.Endpoints(e)
				if next == start || next == head || slices.Contains(walked, next) {
					break
				}
				walked = append(walked, head)
				chain = append(chain, *g.EdgeMut(e))
				head = next
			}
			if head == start || len(chain) < 2 {
				continue
			}

			merged := graph.MergeEdges(*g.NodeMut(start), *g.NodeMut(head), chain)
			merged.OriginalRoadID = chain[0].OriginalRoadID
			for _, id := range walked {
				g.RemoveNode(id)
			}
			g.AddEdge(start, head, merged)
			removed += len(walked)
		}
	}

	return removed
}
