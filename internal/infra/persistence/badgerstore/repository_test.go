package badgerstore

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"roadnet/config"
	"roadnet/internal/domain/entity"
	"roadnet/internal/domain/repository"
	"roadnet/internal/infra/routing/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = entity.NewPoint(57.7089, 11.9746)

func newRepo(t *testing.T) repository.SensorRepository {
	t.Helper()

	db, err := Open(config.BadgerConfig{InMemory: true}, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSensorRepository(db)
}

func channel(site int32, lane int32, p entity.Point) entity.SensorMetadata {
	return entity.SensorMetadata{
		SiteID:      site,
		Point:       p,
		Side:        entity.SideNorth,
		VehicleType: entity.VehicleAny,
		Lane:        lane,
		Period:      60,
	}
}

func TestSensorRepository_FindOrCreateSensor(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	first, err := repo.FindOrCreateSensor(ctx, channel(1, 1, origin))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	again, err := repo.FindOrCreateSensor(ctx, channel(1, 1, origin))
	require.NoError(t, err)
	assert.Equal(t, first, again)

	other, err := repo.FindOrCreateSensor(ctx, channel(1, 2, origin))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	all, err := repo.GetAllSensors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSensorRepository_FindOrCreateSensor_Concurrent(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := repo.FindOrCreateSensor(ctx, channel(7, 1, origin))
			if err == nil {
				ids[i] = m.ID
			}
		}()
	}
	wg.Wait()

	all, err := repo.GetAllSensors(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	for _, id := range ids {
		if id != "" {
			assert.Equal(t, all[0].ID, id)
		}
	}
}

func TestSensorRepository_FindOrCreateSensor_InvalidLocation(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.FindOrCreateSensor(context.Background(), channel(1, 1, entity.NewPoint(math.NaN(), 0)))
	assert.ErrorIs(t, err, repository.ErrInvalidSensor)
}

func TestSensorRepository_GetSensorDataAt(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	laneOne, err := repo.FindOrCreateSensor(ctx, channel(1, 1, origin))
	require.NoError(t, err)
	laneTwo, err := repo.FindOrCreateSensor(ctx, channel(1, 2, origin))
	require.NoError(t, err)
	site2, err := repo.FindOrCreateSensor(ctx, channel(2, 1, origin))
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveDataPoints(ctx, []entity.DataPoint{
		{SensorID: laneOne.ID, Time: base, AverageSpeed: 50},
		{SensorID: laneOne.ID, Time: base.Add(2 * time.Minute), AverageSpeed: 60},
		{SensorID: laneTwo.ID, Time: base.Add(4 * time.Minute), AverageSpeed: 70},
		{SensorID: laneOne.ID, Time: base.Add(10 * time.Minute), AverageSpeed: 90},
		{SensorID: site2.ID, Time: base.Add(-time.Hour), AverageSpeed: 30},
	}))

	at := base.Add(5 * time.Minute)
	data, err := repo.GetSensorDataAt(ctx, []entity.SensorMetadata{laneOne, laneTwo, site2}, at, 15*time.Minute)
	require.NoError(t, err)

	require.Len(t, data, 1, "site 2 reading is too old")
	assert.Equal(t, 70.0, data[1].AverageSpeed)
	assert.Equal(t, base.Add(4*time.Minute), data[1].Time)
	assert.Equal(t, laneTwo.ID, data[1].SensorID)
	assert.NotEmpty(t, data[1].ID)

	data, err = repo.GetSensorDataAt(ctx, []entity.SensorMetadata{laneOne}, base.Add(time.Minute), time.Duration(math.MaxInt64))
	require.NoError(t, err)
	assert.Equal(t, 50.0, data[1].AverageSpeed)
}

func TestSensorRepository_DataPointTimes(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	s, err := repo.FindOrCreateSensor(ctx, channel(1, 1, origin))
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	var points []entity.DataPoint
	for _, m := range []int{0, 1, 1, 3, 9} {
		points = append(points, entity.DataPoint{SensorID: s.ID, Time: base.Add(time.Duration(m) * time.Minute)})
	}
	require.NoError(t, repo.SaveDataPoints(ctx, points))

	times, err := repo.DataPointTimes(ctx, base, base.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{base, base.Add(time.Minute), base.Add(3 * time.Minute)}, times)
}

func TestSensorRepository_SaveDataPoints_RequiresSensor(t *testing.T) {
	repo := newRepo(t)

	err := repo.SaveDataPoints(context.Background(), []entity.DataPoint{{Time: time.Now()}})
	assert.ErrorIs(t, err, repository.ErrSensorNotFound)
}

func TestSensorRepository_SensorsNear(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	near, err := repo.FindOrCreateSensor(ctx, channel(1, 1, geo.Offset(origin, 300, 0)))
	require.NoError(t, err)
	_, err = repo.FindOrCreateSensor(ctx, channel(2, 1, geo.Offset(origin, 0, 3000)))
	require.NoError(t, err)

	found, err := repo.SensorsNear(ctx, origin, 1000)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, near.ID, found[0].ID)

	found, err = repo.SensorsNear(ctx, origin, 100)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSensorRepository_SensorsNear_LargeRadiusEdge(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	const radius = 10_000.0
	for i := range 12 {
		bearing := float64(i) * math.Pi / 6
		p := geo.Offset(origin, 9_950*math.Cos(bearing), 9_950*math.Sin(bearing))
		_, err := repo.FindOrCreateSensor(ctx, channel(int32(i+1), 1, p))
		require.NoError(t, err)
	}

	found, err := repo.SensorsNear(ctx, origin, radius)
	require.NoError(t, err)
	assert.Len(t, found, 12)
}

func TestDiskRings(t *testing.T) {
	const edgeKm = 0.174

	tests := []struct {
		name     string
		radiusKm float64
		want     int
	}{
		{name: "point query", radiusKm: 0, want: 2},
		{name: "negative radius", radiusKm: -1, want: 2},
		{name: "one kilometre", radiusKm: 1, want: 6},
		{name: "ten kilometres", radiusKm: 10, want: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := diskRings(tt.radiusKm, edgeKm)
			assert.Equal(t, tt.want, k)
			// Centres k rings out are at least 1.5*k edges away.
			assert.GreaterOrEqual(t, 1.5*float64(k)*edgeKm, max(tt.radiusKm, 0)+2*edgeKm)
		})
	}
}
