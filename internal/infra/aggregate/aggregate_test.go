package aggregate

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"
	"roadnet/internal/infra/metrics"
	mockRepo "roadnet/internal/mocks/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// sensorStore backs a mock repository with an in-memory sensor registry and
// keeps a copy of every batch it accepts.
type sensorStore struct {
	repo *mockRepo.MockSensorRepository

	mu      sync.Mutex
	sensors map[entity.SensorKey]entity.SensorMetadata
	batches [][]entity.DataPoint
}

func newSensorStore(t *testing.T) *sensorStore {
	return &sensorStore{
		repo:    mockRepo.NewMockSensorRepository(t),
		sensors: make(map[entity.SensorKey]entity.SensorMetadata),
	}
}

// register lets any number of lookups resolve against the registry.
func (s *sensorStore) register() {
	s.repo.EXPECT().
		FindOrCreateSensor(mock.Anything, mock.AnythingOfType("entity.SensorMetadata")).
		RunAndReturn(func(_ context.Context, meta entity.SensorMetadata) (entity.SensorMetadata, error) {
			s.mu.Lock()
			defer s.mu.Unlock()

			if found, ok := s.sensors[meta.Key()]; ok {
				return found, nil
			}
			meta.ID = fmt.Sprintf("sensor-%d", len(s.sensors)+1)
			s.sensors[meta.Key()] = meta

			return meta, nil
		})
}

// accept stores every batch written from now on.
func (s *sensorStore) accept() {
	s.repo.EXPECT().
		SaveDataPoints(mock.Anything, mock.AnythingOfType("[]entity.DataPoint")).
		RunAndReturn(func(_ context.Context, points []entity.DataPoint) error {
			s.mu.Lock()
			defer s.mu.Unlock()

			s.batches = append(s.batches, append([]entity.DataPoint(nil), points...))

			return nil
		})
}

func (s *sensorStore) written() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, b := range s.batches {
		n += len(b)
	}

	return n
}

type sliceSource []entity.RawSensorReading

func (s sliceSource) Stream(ctx context.Context, fn func(entity.RawSensorReading) error) error {
	for _, r := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}

	return nil
}

type failingSource struct{}

func (failingSource) Stream(context.Context, func(entity.RawSensorReading) error) error {
	return errors.New("cursor lost")
}

func raw(i int, site int32, lane string) entity.RawSensorReading {
	return entity.RawSensorReading{
		ID:              fmt.Sprintf("raw-%d", i),
		SiteID:          site,
		MeasurementTime: time.Date(2024, 3, 1, 8, i%60, 0, 0, time.UTC),
		Period:          60,
		VehicleType:     entity.VehicleAny,
		FlowRate:        12,
		AverageSpeed:    70,
		SpecificLane:    lane,
		MeasurementSide: "northBound",
		Location:        entity.GeoJSONPoint{Type: "Point", Coordinates: [2]float64{18.07, 59.33}},
	}
}

func feed(n int) sliceSource {
	src := make(sliceSource, 0, n)
	for i := range n {
		src = append(src, raw(i, int32(i%3), "lane1"))
	}

	return src
}

func TestRun_WritesEveryRecord(t *testing.T) {
	store := newSensorStore(t)
	store.register()
	store.accept()
	a := New(store.repo, Options{Workers: 4, BatchSize: 7, QueueSize: 2, MaxInFlight: 2}, nil, nil, nil)

	stats, err := a.Run(context.Background(), feed(50), 50)
	require.NoError(t, err)

	assert.Equal(t, int64(50), stats.Read)
	assert.Equal(t, int64(50), stats.Written)
	assert.Equal(t, int64(8), stats.Batches)
	assert.Zero(t, stats.Skipped)
	assert.Equal(t, int64(3), stats.Sensors)
	assert.Len(t, store.sensors, 3)
	assert.Equal(t, 50, store.written())
	store.repo.AssertNumberOfCalls(t, "SaveDataPoints", 8)

	for _, b := range store.batches {
		assert.LessOrEqual(t, len(b), 7)
		for _, p := range b {
			assert.NotEmpty(t, p.SensorID)
			assert.NotEmpty(t, p.OriginalID)
		}
	}
}

func TestRun_SkipsInvalidLanes(t *testing.T) {
	repo := mockRepo.NewMockSensorRepository(t)
	src := sliceSource{raw(0, 1, "lane1"), raw(1, 1, "shoulder"), raw(2, 1, "lane2")}

	for i, lane := range []int32{1, 2} {
		repo.EXPECT().
			FindOrCreateSensor(mock.Anything, mock.MatchedBy(func(meta entity.SensorMetadata) bool {
				return meta.SiteID == 1 && meta.Lane == lane
			})).
			Return(entity.SensorMetadata{ID: fmt.Sprintf("sensor-%d", i+1), SiteID: 1, Lane: lane}, nil).
			Once()
	}
	repo.EXPECT().
		SaveDataPoints(mock.Anything, mock.MatchedBy(func(points []entity.DataPoint) bool {
			return len(points) == 2 && points[0].SensorID == "sensor-1" && points[1].SensorID == "sensor-2"
		})).
		Return(nil).
		Once()

	a := New(repo, Options{Workers: 1}, nil, nil, nil)

	stats, err := a.Run(context.Background(), src, len(src))
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Read)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.Equal(t, int64(2), stats.Written)
	assert.Equal(t, int64(2), stats.Sensors)
}

func TestRun_FailedBatchDoesNotStopTheRun(t *testing.T) {
	store := newSensorStore(t)
	store.register()
	store.repo.EXPECT().
		SaveDataPoints(mock.Anything, mock.Anything).
		Return(errors.New("disk full")).
		Once()
	store.accept()
	m := metrics.New("test")
	a := New(store.repo, Options{Workers: 1, BatchSize: 5}, nil, m, nil)

	stats, err := a.Run(context.Background(), feed(12), 12)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Batches)
	assert.Equal(t, int64(1), stats.FailedBatches)
	assert.Equal(t, int64(7), stats.Written)
	assert.Equal(t, 7, store.written())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AggregateBatches.WithLabelValues("failed")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.AggregateBatches.WithLabelValues("ok")))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.AggregateRecords.WithLabelValues("written")))
}

func TestRun_SourceErrorIsReturned(t *testing.T) {
	a := New(mockRepo.NewMockSensorRepository(t), Options{}, nil, nil, nil)

	_, err := a.Run(context.Background(), failingSource{}, 0)
	assert.ErrorContains(t, err, "cursor lost")
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(mockRepo.NewMockSensorRepository(t), Options{}, nil, nil, nil).Run(ctx, feed(10), 10)
	assert.ErrorIs(t, err, context.Canceled)
}
