package roads

import (
	"os"
	"path/filepath"
	"testing"

	"roadnet/internal/domain/entity"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTile = maptile.New(8800, 4800, 14)

func encodedTile(t *testing.T, layer string) []byte {
	t.Helper()

	layers := mvt.Layers{
		&mvt.Layer{
			Name: layer,
			Features: []*geojson.Feature{
				{
					Geometry: orb.LineString{{100, 100}, {200, 100}},
					Properties: map[string]any{
						"class":  "primary",
						"oneway": true,
						"ref":    "73",
					},
				},
				{
					Geometry: orb.MultiLineString{
						{{10, 10}, {20, 20}, {30, 30}},
						{{40, 40}, {50, 50}},
					},
					Properties: map[string]any{
						"class":    "secondary",
						"maxspeed": "80",
					},
				},
				{
					Geometry:   orb.Point{5, 5},
					Properties: map[string]any{"class": "primary"},
				},
			},
		},
	}

	data, err := mvt.Marshal(layers)
	require.NoError(t, err)

	return data
}

func TestMVTReader_ParseTile(t *testing.T) {
	reader := NewMVTReader("")

	roads, err := reader.ParseTile(encodedTile(t, DefaultMVTLayer), testTile)
	require.NoError(t, err)
	require.Len(t, roads, 3)

	assert.Equal(t, entity.DirectionForward, roads[0].Direction)
	assert.Equal(t, 60.0, roads[0].SpeedLimit)
	assert.Equal(t, int32(73), roads[0].MainNumber)
	assert.Len(t, roads[0].Coordinates, 2)
	assert.Positive(t, roads[0].Length)

	assert.Equal(t, entity.DirectionBoth, roads[1].Direction)
	assert.Equal(t, 80.0, roads[1].SpeedLimit)
	assert.Len(t, roads[1].Coordinates, 3)
	assert.Len(t, roads[2].Coordinates, 2)

	for i, r := range roads {
		assert.Equal(t, int32(i), r.UniqueID)
		for _, p := range r.Coordinates {
			assert.True(t, p.Within(testTile.Bound().Pad(0.01)), "point %v outside tile", p)
		}
	}

	// Ids continue on the next tile.
	more, err := reader.ParseTile(encodedTile(t, DefaultMVTLayer), testTile)
	require.NoError(t, err)
	assert.Equal(t, int32(3), more[0].UniqueID)
}

func TestMVTReader_LayerNotFound(t *testing.T) {
	roads, err := NewMVTReader("roads").ParseTile(encodedTile(t, DefaultMVTLayer), testTile)
	require.NoError(t, err)
	assert.Empty(t, roads)
}

func TestMVTReader_InvalidData(t *testing.T) {
	roads, err := NewMVTReader("").ParseTile([]byte("not a tile"), testTile)
	assert.Error(t, err)
	assert.Nil(t, roads)
}

func TestReadTileFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "14", "8800")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "4800.mvt")
	require.NoError(t, os.WriteFile(path, encodedTile(t, "transportation"), 0o600))

	roads, err := ReadTileFile(path, "")
	require.NoError(t, err)
	assert.Len(t, roads, 3)

	_, err = ReadTileFile(filepath.Join(t.TempDir(), "tile.mvt"), "")
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestTileFromPath(t *testing.T) {
	tile, err := tileFromPath("/tiles/12/2200/1200.pbf")
	require.NoError(t, err)
	assert.Equal(t, maptile.New(2200, 1200, 12), tile)
}
