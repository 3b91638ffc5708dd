package topology

import (
	"testing"

	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/routing/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collinear(t *testing.T) *graph.Graph {
	t.Helper()

	r := eastward(9, 1, entity.DirectionForward, 0, 100, 5)
	g := Build([]entity.RoadSegment{r})
	require.Equal(t, 5, g.NodeCount())

	return g
}

func TestCollapse_NaiveCollinearRoad(t *testing.T) {
	g := collinear(t)

	removed := Collapse(g, CollapseNaive, nil)

	assert.Equal(t, 3, removed)
	assert.Equal(t, []graph.NodeID{0, 4}, g.NodeIDs())
	require.Equal(t, 1, g.EdgeCount())

	ids := g.EdgesConnecting(0, 4)
	require.Len(t, ids, 1)
	e := g.EdgeMut(ids[0])
	assert.InDelta(t, 400, e.Distance, 1)
	assert.Len(t, e.Polyline, 5)
	assert.Equal(t, graph.ConnectorRoadID, e.OriginalRoadID)
	assert.False(t, e.IsConnector)
	require.NotNil(t, e.SpeedLimit)
	assert.InDelta(t, 50, *e.SpeedLimit, 1e-9)
}

func TestCollapse_ForwardOnlyKeepsRoadID(t *testing.T) {
	g := collinear(t)

	removed := Collapse(g, CollapseForwardOnly, nil)

	assert.Equal(t, 3, removed)
	ids := g.EdgesConnecting(0, 4)
	require.Len(t, ids, 1)
	assert.Equal(t, int32(9), g.EdgeMut(ids[0]).OriginalRoadID)
	assert.Len(t, g.EdgeMut(ids[0]).Polyline, 5)
}

func TestCollapse_NeverRemovesSensorNodes(t *testing.T) {
	for _, strategy := range []CollapseStrategy{CollapseNaive, CollapseForwardOnly} {
		t.Run(string(strategy), func(t *testing.T) {
			g := collinear(t)
			g.NodeMut(2).Sensor = &entity.SensorSample{SiteID: 1}

			assert.Equal(t, 2, Collapse(g, strategy, nil))
			assert.Equal(t, []graph.NodeID{0, 2, 4}, g.NodeIDs())
			assert.Len(t, g.EdgesConnecting(0, 2), 1)
			assert.Len(t, g.EdgesConnecting(2, 4), 1)
		})
	}
}

func TestCollapse_NaiveStopsAtRoadNumberChange(t *testing.T) {
	g := Build([]entity.RoadSegment{
		road(1, 1, entity.DirectionForward, at(0, 0), at(0, 100), at(0, 200)),
		road(2, 2, entity.DirectionForward, at(0, 200), at(0, 300), at(0, 400)),
	})
	require.Equal(t, 1, MergeOverlap(g, 0, nil))

	// Node 2 now joins road 1 and road 2 and must survive.
	assert.Equal(t, 2, Collapse(g, CollapseNaive, nil))
	assert.Equal(t, []graph.NodeID{0, 2, 5}, g.NodeIDs())
}

func TestCollapse_KeepsConnectorEndpoints(t *testing.T) {
	g := collinear(t)
	other := g.AddNode(graph.Node{Point: at(15, 200)})
	g.AddEdge(2, other, connector(at(0, 200), at(15, 200)))
	g.AddEdge(other, 2, connector(at(15, 200), at(0, 200)))

	Collapse(g, CollapseNaive, nil)

	assert.True(t, g.HasNode(2))
	assert.True(t, g.AreNeighbours(2, other))
}

func TestCollapse_TwoWayRoadIsLeftAlone(t *testing.T) {
	g := Build([]entity.RoadSegment{eastward(1, 1, entity.DirectionBoth, 0, 100, 4)})

	assert.Zero(t, Collapse(g, CollapseNaive, nil))
	assert.Equal(t, 4, g.NodeCount())
}

func TestCollapse_RingWithoutExitIsLeftAlone(t *testing.T) {
	g := graph.New()
	ids := make([]graph.NodeID, 4)
	for i := range ids {
		ids[i] = g.AddNode(graph.Node{Point: at(float64(i), 0)})
	}
	for i := range ids {
		next := ids[(i+1)%len(ids)]
		g.AddEdge(ids[i], next, graph.Edge{Distance: 1, MainNumber: 1, OriginalRoadID: 1})
	}

	assert.Zero(t, Collapse(g, CollapseNaive, nil))
	assert.Equal(t, 4, g.NodeCount())
}

func TestCollapse_None(t *testing.T) {
	g := collinear(t)

	assert.Zero(t, Collapse(g, CollapseNone, nil))
	assert.Equal(t, 5, g.NodeCount())
}
