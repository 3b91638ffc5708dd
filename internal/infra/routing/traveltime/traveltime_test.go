package traveltime

import (
	"context"
	"math"
	"testing"
	"time"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"
	"roadnet/internal/infra/routing/geo"
	"roadnet/internal/infra/routing/graph"
	mockRepo "roadnet/internal/mocks/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var origin = entity.NewPoint(57.7089, 11.9746)

// line builds a chain of nodes along the given cumulative distances, each
// edge carrying a 50 km/h limit.
func line(distances ...float64) (*graph.ProcessedGraph, []graph.NodeID) {
	g := graph.New()
	limit := 50.0
	ids := make([]graph.NodeID, len(distances))
	for i, d := range distances {
		ids[i] = g.AddNode(graph.Node{Point: geo.Offset(origin, 0, d)})
		if i > 0 {
			g.AddEdge(ids[i-1], ids[i], graph.Edge{Distance: d - distances[i-1], SpeedLimit: &limit})
		}
	}

	return graph.NewProcessed(g), ids
}

func TestEstimate_InterpolatesBetweenSensors(t *testing.T) {
	pg, path := line(0, 500, 1000)
	pg.Graph.NodeMut(path[0]).Sensor = &entity.SensorSample{SiteID: 1}
	pg.Graph.NodeMut(path[2]).Sensor = &entity.SensorSample{SiteID: 2}

	readings := Readings{1: {AverageSpeedKmh: 36}, 2: {AverageSpeedKmh: 72}}

	res, err := Estimate(pg, path, readings, Options{})
	require.NoError(t, err)

	assert.InDelta(t, 1000, res.Distance, 1e-9)
	assert.InDelta(t, 2000.0/30, res.Seconds, 1e-6)
	assert.False(t, res.MissingData)
	require.Len(t, res.Samples, 2)
	assert.Equal(t, 1000.0, res.Samples[1].Distance)
}

func TestEstimate_LeadInAndTail(t *testing.T) {
	pg, path := line(0, 200, 400, 600)
	pg.Graph.NodeMut(path[1]).Sensor = &entity.SensorSample{SiteID: 1}

	res, err := Estimate(pg, path, Readings{1: {AverageSpeedKmh: 72}}, Options{})
	require.NoError(t, err)

	// 200 m before and 400 m after the only sensor, both at 20 m/s.
	assert.InDelta(t, 30, res.Seconds, 1e-9)
}

func TestEstimate_AveragesStoreSensorsAndSkipsInvalid(t *testing.T) {
	pg, path := line(0, 1000)
	pg.Sensors.Add(path[0], entity.SensorMetadata{SiteID: 1, VehicleType: entity.VehicleCar})
	pg.Sensors.Add(path[0], entity.SensorMetadata{SiteID: 2, VehicleType: entity.VehicleCar})
	pg.Sensors.Add(path[0], entity.SensorMetadata{SiteID: 3, VehicleType: entity.VehicleCar})
	pg.Sensors.Add(path[0], entity.SensorMetadata{SiteID: 4, VehicleType: entity.VehicleLorry})

	readings := Readings{
		1: {AverageSpeedKmh: 30},
		2: {AverageSpeedKmh: 90},
		3: {AverageSpeedKmh: 0},
		4: {AverageSpeedKmh: 10},
	}

	res, err := Estimate(pg, path, readings, Options{VehicleType: entity.VehicleCar})
	require.NoError(t, err)
	require.Len(t, res.Samples, 1)
	assert.InDelta(t, 60, res.Samples[0].SpeedKmh, 1e-9)
	assert.InDelta(t, 60, res.Seconds, 1e-9)
}

func TestEstimate_NoDataFallsBackToNominal(t *testing.T) {
	pg, path := line(0, 250, 500)

	res, err := Estimate(pg, path, Readings{}, Options{NominalSpeedKmh: 36})

	require.ErrorIs(t, err, ErrNoSensorData)
	assert.True(t, res.MissingData)
	assert.InDelta(t, 50, res.Seconds, 1e-9)
	assert.Empty(t, res.Samples)
}

func TestEstimate_BrokenPath(t *testing.T) {
	pg, path := line(0, 100)

	_, err := Estimate(pg, []graph.NodeID{path[1], path[0]}, Readings{}, Options{})
	assert.ErrorIs(t, err, graph.ErrEdgeNotFound)
}

func TestStaticReadings(t *testing.T) {
	pg, path := line(0, 100)
	pg.Graph.NodeMut(path[1]).Sensor = &entity.SensorSample{SiteID: 7, AverageSpeed: 45, FlowRate: 3}
	pg.Sensors.Add(path[1], entity.SensorMetadata{SiteID: 8})

	r := StaticReadings(pg)

	assert.Len(t, r, 2)
	assert.Equal(t, 45.0, r[7].AverageSpeedKmh)
	assert.Equal(t, 45.0, r[8].AverageSpeedKmh)
	assert.Equal(t, 3.0, r[8].FlowRate)
}

func TestFromSpeedLimits(t *testing.T) {
	pg, path := line(0, 500, 1000)
	g := pg.Graph
	extra := g.AddNode(graph.Node{Point: geo.Offset(origin, 0, 1500)})
	g.AddEdge(path[2], extra, graph.Edge{Distance: 500})

	seconds, err := FromSpeedLimits(g, append(path, extra), 0)
	require.NoError(t, err)

	// 1500 m at 50 km/h: the last edge inherits the previous limit.
	assert.InDelta(t, 1500/geo.KmhToMs(50), seconds, 1e-9)

	_, err = FromSpeedLimits(g, []graph.NodeID{extra, path[0]}, 0)
	assert.ErrorIs(t, err, graph.ErrEdgeNotFound)
}

func TestLive(t *testing.T) {
	pg, path := line(0, 1000)
	pg.Sensors.Add(path[0], entity.SensorMetadata{SiteID: 1})
	pg.Sensors.Add(path[1], entity.SensorMetadata{SiteID: 2})

	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	repo := mockRepo.NewMockSensorRepository(t)
	repo.EXPECT().
		GetSensorDataAt(mock.Anything, mock.MatchedBy(func(sensors []entity.SensorMetadata) bool {
			return len(sensors) == 2
		}), at, time.Duration(math.MaxInt64)).
		Return(map[int32]entity.DataPoint{
			1: {AverageSpeed: 36, Time: at},
			2: {AverageSpeed: 72, Time: at},
		}, nil).
		Once()

	res, err := Live(context.Background(), repo, pg, path, Filter{At: at}, Options{})
	require.NoError(t, err)

	assert.InDelta(t, 2000.0/30, res.Seconds, 1e-6)
}

func TestLive_StoreError(t *testing.T) {
	pg, path := line(0, 1000)
	pg.Sensors.Add(path[0], entity.SensorMetadata{SiteID: 1})

	storeErr := errors.New("connection reset")
	repo := mockRepo.NewMockSensorRepository(t)
	repo.EXPECT().
		GetSensorDataAt(mock.Anything, mock.Anything, mock.AnythingOfType("time.Time"), time.Minute).
		Return(nil, storeErr).
		Once()

	_, err := Live(context.Background(), repo, pg, path, Filter{MaxAge: time.Minute}, Options{})
	assert.ErrorIs(t, err, storeErr)
}
