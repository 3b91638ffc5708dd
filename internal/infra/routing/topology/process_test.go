package topology

import (
	"context"
	"sync"
	"testing"

	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/routing/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepRecorder struct {
	mu       sync.Mutex
	started  []string
	finished map[string]int
}

func (r *stepRecorder) StepStarted(step string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, step)
}

func (r *stepRecorder) Tick(string, int) {}

func (r *stepRecorder) StepFinished(step string, affected int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished == nil {
		r.finished = make(map[string]int)
	}
	r.finished[step] = affected
}

func parallelFixture() ([]entity.RoadSegment, []entity.SensorSample) {
	roads := []entity.RoadSegment{
		eastward(1, 1, entity.DirectionForward, 0, 50, 5),
		eastward(2, 2, entity.DirectionForward, 15, 50, 5),
		eastward(3, 3, entity.DirectionForward, 2000, 50, 3),
	}
	dup := roads[0]
	dup.UniqueID = 4
	roads = append(roads, dup)

	sensors := []entity.SensorSample{sample(100, at(1, 0), 70)}

	return roads, sensors
}

func TestProcess_FullPipeline(t *testing.T) {
	roads, sensors := parallelFixture()
	rec := &stepRecorder{}

	pg, report, err := Process(context.Background(), roads, sensors, DefaultOptions(), rec)
	require.NoError(t, err)

	assert.Equal(t, []string{
		StepDedupRoads, StepBuild, StepMergeOverlap, StepAssignSensors,
		StepConnect, StepRemoveDisjoint, StepDedupEdges, StepCollapse,
	}, rec.started)

	assert.Equal(t, 1, report.RoadsDeduped)
	assert.Equal(t, 13, report.NodesBuilt)
	assert.Equal(t, 1, report.SensorNodes)
	assert.Equal(t, 2, report.ConnectorPairs)
	assert.Equal(t, 3, report.NodesDisjoint)
	assert.Equal(t, rec.finished[StepCollapse], report.NodesCollapsed)

	g := pg.Graph
	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 6, g.EdgeCount())
	assert.Equal(t, 4, report.FinalConnectors)
	assert.Equal(t, 1, report.FinalSensorNodes)

	// The sensor node is the start of the surviving copy of road 1.
	require.True(t, g.HasNode(8))
	require.NotNil(t, g.NodeMut(8).Sensor)
	assert.Equal(t, int32(100), g.NodeMut(8).Sensor.SiteID)
	assert.Equal(t, 6, report.NodesCollapsed)
}

func TestProcessor_MergesSeparateSegmentsIntoOneEdge(t *testing.T) {
	// Three one-hop roads A-B, B-C, C-D share their end points exactly.
	roads := []entity.RoadSegment{
		road(1, 7, entity.DirectionForward, at(0, 0), at(0, 100)),
		road(2, 7, entity.DirectionForward, at(0, 100), at(0, 200)),
		road(3, 7, entity.DirectionForward, at(0, 200), at(0, 300)),
	}
	opts := Options{
		DedupRoads:   true,
		MergeOverlap: true,
		Collapse:     CollapseNaive,
	}
	p, err := NewProcessor(opts, nil, nil)
	require.NoError(t, err)

	pg, report, err := p.Run(context.Background(), roads, nil)
	require.NoError(t, err)

	assert.Equal(t, 6, report.NodesBuilt)
	assert.Equal(t, 2, report.NodesMerged)
	assert.Equal(t, 2, report.NodesCollapsed)

	g := pg.Graph
	assert.Equal(t, []graph.NodeID{0, 5}, g.NodeIDs())
	require.Equal(t, 1, g.EdgeCount())

	ids := g.EdgesConnecting(0, 5)
	require.Len(t, ids, 1)
	e := g.EdgeMut(ids[0])
	assert.InDelta(t, 300, e.Distance, 0.5)
	assert.Len(t, e.Polyline, 4)
	assert.Equal(t, int32(7), e.MainNumber)
}

func TestProcess_PruneRemovesFarRoad(t *testing.T) {
	roads, sensors := parallelFixture()
	opts := DefaultOptions()
	opts.MaxDistanceFromSensors = 500
	opts.RemoveDisjoint = false

	_, report, err := Process(context.Background(), roads, sensors, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.NodesPruned)
}

func TestProcess_LengthMismatchAborts(t *testing.T) {
	roads, sensors := parallelFixture()
	roads[3].Length++

	_, _, err := Process(context.Background(), roads, sensors, DefaultOptions(), nil)

	require.ErrorIs(t, err, ErrRoadLengthMismatch)
	var mismatch *RoadLengthMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestProcess_CancelledContext(t *testing.T) {
	roads, sensors := parallelFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Process(ctx, roads, sensors, DefaultOptions(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_InvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Collapse = "sideways"

	_, _, err := Process(context.Background(), nil, nil, opts, nil)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.ConnectDistance = 0
	_, _, err = Process(context.Background(), nil, nil, opts, nil)
	assert.Error(t, err)
}

func TestProcess_RemoveDisjointWithoutSensors(t *testing.T) {
	roads, _ := parallelFixture()

	_, _, err := Process(context.Background(), roads, nil, DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrNoSensors)
}
