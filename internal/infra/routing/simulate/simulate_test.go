package simulate

import (
	"bytes"
	"context"
	"math"
	"testing"

	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/routing/geo"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/traversal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = entity.NewPoint(57.7089, 11.9746)

func at(eastM float64) entity.Point {
	return geo.Offset(origin, 0, eastM)
}

// corridor is a 1 km road with a 36 km/h sensor at its start and a
// 72 km/h sensor at its end.
func corridor() *graph.ProcessedGraph {
	g := graph.New()
	limit := 50.0
	var prev graph.NodeID = graph.NoNode
	for i, east := range []float64{0, 500, 1000} {
		id := g.AddNode(graph.Node{Point: at(east)})
		if prev != graph.NoNode {
			g.AddEdge(prev, id, graph.Edge{Distance: 500, SpeedLimit: &limit})
		}
		switch i {
		case 0:
			g.NodeMut(id).Sensor = &entity.SensorSample{SiteID: 1, AverageSpeed: 36, FlowRate: 10}
		case 2:
			g.NodeMut(id).Sensor = &entity.SensorSample{SiteID: 2, AverageSpeed: 72, FlowRate: 10}
		}
		prev = id
	}

	return graph.NewProcessed(g)
}

func setup(sites ...int32) Setup {
	return Setup{
		Paths: [][]traversal.PointQuery{{
			{Point: at(0), Radius: math.NaN()},
			{Point: at(1000), Radius: math.NaN()},
		}},
		Metric:        traversal.Space,
		Sites:         sites,
		Mode:          Mode{Kind: KindDeviation, From: 0.5, To: 1, Step: 0.5},
		FakeDataSpeed: 120,
	}
}

func TestMode_Modifications(t *testing.T) {
	mods, err := Mode{Kind: KindDeviation, From: 0.8, To: 1.2, Step: 0.1}.Modifications()
	require.NoError(t, err)
	require.Len(t, mods, 5)
	assert.InDelta(t, 1.2, mods[4].Value, 1e-9)

	mods, err = Mode{Kind: KindSetSpeed, Speeds: []float64{30, 60}}.Modifications()
	require.NoError(t, err)
	assert.Equal(t, []Modification{{Kind: KindSetSpeed, Value: 30}, {Kind: KindSetSpeed, Value: 60}}, mods)

	_, err = Mode{Kind: KindDeviation, From: 1, To: 0, Step: 0.1}.Modifications()
	assert.ErrorIs(t, err, ErrInvalidMode)
	_, err = Mode{Kind: "random"}.Modifications()
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestModification_Apply(t *testing.T) {
	s := entity.SensorSample{AverageSpeed: 80}

	assert.Equal(t, 40.0, Modification{Kind: KindDeviation, Value: 0.5}.Apply(s).AverageSpeed)
	assert.Equal(t, 30.0, Modification{Kind: KindSetSpeed, Value: 30}.Apply(s).AverageSpeed)
	assert.Equal(t, 80.0, s.AverageSpeed)
}

func TestRun(t *testing.T) {
	pg := corridor()

	outcomes, err := Run(context.Background(), pg, setup(1), Options{Workers: 2}, nil, nil)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	// Halving the first sensor: 2 * 1000 m / (5 + 20) m/s.
	assert.Equal(t, 0.5, outcomes[0].Modification.Value)
	assert.InDelta(t, 80, outcomes[0].TravelTime, 1e-6)
	assert.InDelta(t, 2000.0/30, outcomes[1].TravelTime, 1e-6)
	assert.InDelta(t, 1000, outcomes[0].Length, 1e-9)
	assert.Equal(t, []graph.NodeID{0, 1, 2}, outcomes[1].Nodes)

	assert.Equal(t, 36.0, pg.Graph.NodeMut(0).Sensor.AverageSpeed, "input graph must not change")
}

func TestRun_RouteWithoutReadingsUsesNominalSpeed(t *testing.T) {
	pg := corridor()
	for _, id := range pg.Graph.NodeIDs() {
		pg.Graph.NodeMut(id).Sensor = nil
	}

	outcomes, err := Run(context.Background(), pg, setup(), Options{}, nil, nil)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].MissingData)
	assert.InDelta(t, 1000/geo.KmhToMs(DefaultNominalSpeedKmh), outcomes[0].TravelTime, 1e-6)

	outcomes, err = Run(context.Background(), pg, setup(), Options{NominalSpeedKmh: 36}, nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 100, outcomes[1].TravelTime, 1e-6)
}

func TestRun_SensorNotOnPath(t *testing.T) {
	_, err := Run(context.Background(), corridor(), setup(99), Options{}, nil, nil)
	assert.ErrorIs(t, err, ErrSensorNotOnPath)

	outcomes, err := Run(context.Background(), corridor(), setup(99), Options{IgnoreMissingSensors: true}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)
	assert.InDelta(t, outcomes[0].TravelTime, outcomes[1].TravelTime, 1e-9)
}

func TestRun_UnresolvableWaypoint(t *testing.T) {
	s := setup(1)
	s.Paths[0][1].Radius = 1
	s.Paths[0][1].Point = geo.Offset(origin, 5000, 0)

	_, err := Run(context.Background(), corridor(), s, Options{}, nil, nil)
	assert.ErrorIs(t, err, traversal.ErrWaypointNotFound)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Outcome{{
		PathIndex:    0,
		Length:       1000,
		TravelTime:   80,
		Modification: Modification{Kind: KindDeviation, Value: 0.5},
	}})
	require.NoError(t, err)

	assert.Equal(t, "path_index,length,travel_time,modification_value,modification_mode\n0,1000,80,0.5,deviation\n", buf.String())
}

func TestInjectedVehicles(t *testing.T) {
	orig := entity.SensorSample{AverageSpeed: 60, FlowRate: 10}
	fake := entity.SensorSample{AverageSpeed: 80}

	assert.InDelta(t, 5, injectedVehicles(orig, fake, 120), 1e-9)
	assert.True(t, math.IsInf(injectedVehicles(orig, fake, 80), 1))
}
