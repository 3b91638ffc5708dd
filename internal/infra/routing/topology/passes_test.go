package topology

import (
	"testing"

	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/routing/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(siteID int32, p entity.Point, speed float64) entity.SensorSample {
	return entity.SensorSample{SiteID: siteID, Point: p, AverageSpeed: speed, FlowRate: 10, Lane: 1}
}

func TestPruneBySensorDistance(t *testing.T) {
	g := Build([]entity.RoadSegment{eastward(1, 1, entity.DirectionForward, 0, 1000, 3)})

	removed, err := PruneBySensorDistance(g, []entity.SensorSample{sample(1, at(0, 0), 50)}, 500, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []graph.NodeID{0}, g.NodeIDs())
}

func TestPruneBySensorDistance_CentroidShortCircuitAgreesWithLookup(t *testing.T) {
	g := Build([]entity.RoadSegment{eastward(1, 1, entity.DirectionForward, 0, 250, 20)})
	sensors := []entity.SensorSample{sample(1, at(0, 0), 50), sample(2, at(0, 500), 50)}

	removed, err := PruneBySensorDistance(g, sensors, 600, 4, nil)
	require.NoError(t, err)

	// Nodes up to 1100 m east survive: 0, 250, ..., 1000.
	assert.Equal(t, 15, removed)
	assert.Equal(t, 5, g.NodeCount())
}

func TestPruneBySensorDistance_NoSensors(t *testing.T) {
	g := Build([]entity.RoadSegment{eastward(1, 1, entity.DirectionForward, 0, 100, 2)})

	_, err := PruneBySensorDistance(g, nil, 100, 1, nil)
	assert.ErrorIs(t, err, ErrNoSensors)
}

func TestMergeOverlap(t *testing.T) {
	build := func(gapM float64) *graph.Graph {
		return Build([]entity.RoadSegment{
			road(1, 1, entity.DirectionForward, at(0, 0), at(0, 100)),
			road(2, 2, entity.DirectionForward, at(0, 100+gapM), at(0, 200)),
		})
	}

	t.Run("threshold zero keeps distinct positions apart", func(t *testing.T) {
		g := build(0.5)
		assert.Zero(t, MergeOverlap(g, 0, nil))
		assert.Equal(t, 4, g.NodeCount())
	})

	t.Run("threshold zero joins co-located caps", func(t *testing.T) {
		g := build(0)
		assert.Equal(t, 1, MergeOverlap(g, 0, nil))
		assert.Equal(t, 3, g.NodeCount())
		assert.Len(t, g.EdgesConnecting(1, 3), 1)
	})

	t.Run("gap within threshold is merged", func(t *testing.T) {
		g := build(0.5)
		assert.Equal(t, 1, MergeOverlap(g, 1, nil))
		assert.Len(t, g.EdgesConnecting(0, 1), 1)
		assert.Len(t, g.EdgesConnecting(1, 3), 1)
		assert.False(t, g.HasNode(2))
	})
}

func TestMergeOverlap_LargeThresholdConnectsCluster(t *testing.T) {
	// Four stubs leaving a junction; their inner ends are a few metres apart.
	g := Build([]entity.RoadSegment{
		road(1, 1, entity.DirectionForward, at(2, 0), at(100, 0)),
		road(2, 2, entity.DirectionForward, at(0, 2), at(0, 100)),
		road(3, 3, entity.DirectionForward, at(-2, 0), at(-100, 0)),
		road(4, 4, entity.DirectionForward, at(0, -2), at(0, -100)),
	})

	assert.Equal(t, 3, MergeOverlap(g, 10, nil))
	assert.Equal(t, 5, g.NodeCount())
	assert.Equal(t, 4, g.EdgeCount())
	assert.Len(t, g.Outgoing(0), 4)
}

func TestAssignSensors(t *testing.T) {
	roads := []entity.RoadSegment{eastward(1, 1, entity.DirectionForward, 0, 100, 3)}
	sensors := []entity.SensorSample{
		sample(11, at(1, 0), 40),
		sample(12, at(-1, 1), 60),
		sample(13, at(0, 199), 80),
	}

	t.Run("average", func(t *testing.T) {
		pg := graph.NewProcessed(Build(roads))

		assert.Equal(t, 2, AssignSensors(pg, sensors, SensorAverage, 2, nil))

		first := pg.Graph.NodeMut(0).Sensor
		require.NotNil(t, first)
		assert.Equal(t, int32(11), first.SiteID)
		assert.Equal(t, 50.0, first.AverageSpeed)
		assert.Equal(t, int32(1), first.Lane)
		assert.Nil(t, pg.Graph.NodeMut(1).Sensor)
		require.NotNil(t, pg.Graph.NodeMut(2).Sensor)
		assert.Equal(t, int32(13), pg.Graph.NodeMut(2).Sensor.SiteID)
		assert.Empty(t, pg.Sensors)
	})

	t.Run("list", func(t *testing.T) {
		pg := graph.NewProcessed(Build(roads))

		AssignSensors(pg, sensors, SensorList, 1, nil)

		assert.Len(t, pg.Sensors[0], 2)
		assert.Len(t, pg.Sensors[2], 1)
		assert.Equal(t, []int32{11, 12, 13}, pg.Sensors.SiteIDs())
		assert.NotNil(t, pg.Graph.NodeMut(0).Sensor)
	})
}

func TestConnectDisjoint_ParallelRoads(t *testing.T) {
	g := Build([]entity.RoadSegment{
		road(1, 1, entity.DirectionForward, at(0, 0), at(0, 100)),
		road(2, 2, entity.DirectionForward, at(15, 0), at(15, 100)),
	})

	pairs := ConnectDisjoint(g, 20, 2, nil)

	assert.Equal(t, 2, pairs)
	assert.Equal(t, 6, g.EdgeCount())
	assert.True(t, g.AreNeighbours(0, 2))
	assert.True(t, g.AreNeighbours(1, 3))
	assert.False(t, g.AreNeighbours(0, 3))

	for _, id := range g.EdgesConnecting(0, 2) {
		e := g.EdgeMut(id)
		assert.True(t, e.IsConnector)
		assert.Equal(t, graph.ConnectorRoadID, e.OriginalRoadID)
		assert.Empty(t, e.Polyline)
		assert.Nil(t, e.SpeedLimit)
		assert.InDelta(t, 15, e.Distance, 0.1)
	}
	assert.Len(t, g.EdgesConnecting(2, 0), 1)
}

func TestConnectDisjoint_TooFarApart(t *testing.T) {
	g := Build([]entity.RoadSegment{
		road(1, 1, entity.DirectionForward, at(0, 0), at(0, 100)),
		road(2, 2, entity.DirectionForward, at(30, 0), at(30, 100)),
	})

	assert.Zero(t, ConnectDisjoint(g, 20, 1, nil))
	assert.Equal(t, 2, g.EdgeCount())
}

func TestConnectDisjoint_SameRoadNumberIsSkipped(t *testing.T) {
	g := Build([]entity.RoadSegment{
		road(1, 1, entity.DirectionForward, at(0, 0), at(0, 100)),
		road(2, 1, entity.DirectionForward, at(15, 0), at(15, 100)),
	})

	assert.Zero(t, ConnectDisjoint(g, 20, 1, nil))
}

func TestRemoveDisjoint(t *testing.T) {
	pg := graph.NewProcessed(Build([]entity.RoadSegment{
		eastward(1, 1, entity.DirectionForward, 0, 100, 3),
		eastward(2, 2, entity.DirectionForward, 500, 100, 2),
	}))
	pg.Graph.NodeMut(2).Sensor = &entity.SensorSample{SiteID: 1}

	removed, err := RemoveDisjoint(pg, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []graph.NodeID{0, 1, 2}, pg.Graph.NodeIDs())
}

func TestRemoveDisjoint_SeedsFromSensorStore(t *testing.T) {
	pg := graph.NewProcessed(Build([]entity.RoadSegment{
		eastward(1, 1, entity.DirectionForward, 0, 100, 2),
		eastward(2, 2, entity.DirectionForward, 500, 100, 2),
	}))
	pg.Sensors.Add(3, entity.SensorMetadata{SiteID: 5})

	removed, err := RemoveDisjoint(pg, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []graph.NodeID{2, 3}, pg.Graph.NodeIDs())
}

func TestRemoveDisjoint_NoSensors(t *testing.T) {
	pg := graph.NewProcessed(Build([]entity.RoadSegment{eastward(1, 1, entity.DirectionForward, 0, 100, 2)}))

	_, err := RemoveDisjoint(pg, nil)
	assert.ErrorIs(t, err, ErrNoSensors)
}

func TestDedupEdges(t *testing.T) {
	g := Build([]entity.RoadSegment{
		road(1, 1, entity.DirectionForward, at(0, 0), at(0, 100)),
		road(2, 2, entity.DirectionForward, at(0, 0), at(0, 100)),
		road(3, 3, entity.DirectionForward, at(0, 100), at(0, 0)),
	})
	require.Equal(t, 3, g.EdgeCount())

	assert.Equal(t, 2, DedupEdges(g, nil))
	assert.Equal(t, 1, g.EdgeCount())
	assert.Zero(t, DedupEdges(g, nil), "second run must not find anything")
}

func TestDedupEdges_KeepsTwoWayLanes(t *testing.T) {
	g := Build([]entity.RoadSegment{eastward(1, 1, entity.DirectionBoth, 0, 100, 3)})

	assert.Zero(t, DedupEdges(g, nil))
	assert.Equal(t, 4, g.EdgeCount())
}

func TestDedupEdges_IgnoresConnectors(t *testing.T) {
	g := Build([]entity.RoadSegment{road(1, 1, entity.DirectionForward, at(0, 0), at(0, 100))})
	g.AddEdge(0, 1, connector(at(0, 0), at(0, 100)))

	assert.Zero(t, DedupEdges(g, nil))
	assert.Equal(t, 2, g.EdgeCount())
}
