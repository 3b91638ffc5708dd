package roads

import (
	"context"
	"database/sql"
	"encoding/binary"
	"path/filepath"
	"testing"

	"roadnet/internal/domain/entity"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// geoPackageBlob wraps geom in a little-endian GeoPackage header without envelope.
func geoPackageBlob(t *testing.T, geom orb.Geometry) []byte {
	t.Helper()

	body, err := wkb.Marshal(geom, binary.LittleEndian)
	require.NoError(t, err)

	header := make([]byte, 8, 8+len(body))
	header[0], header[1] = 'G', 'P'
	header[3] = 0x01
	binary.LittleEndian.PutUint32(header[4:], 3006)

	return append(header, body...)
}

func geoPackageFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "roads.gpkg")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE SverigepaketTP (
		id INTEGER PRIMARY KEY,
		geom BLOB,
		"Vagnummer_Huvudnummer_Vard" INTEGER,
		"Vagnummer_Undernummer" INTEGER,
		"_length" REAL,
		"Hastighetsgrans_HogstaTillatnaHastighet_F" TEXT,
		"Hastighetsgrans_HogstaTillatnaHastighet_B" TEXT,
		"Vagtrafiknat_Vagtrafiknattyp" TEXT,
		"ForbjudenFardriktning_F" TEXT,
		"ForbjudenFardriktning_B" TEXT,
		kommun INTEGER
	)`)
	require.NoError(t, err)

	line := orb.LineString{{674000, 6580800}, {674100, 6580800}}
	rows := []struct {
		id       int
		speedF   any
		speedB   any
		roadType any
		forbidF  any
		forbidB  any
		kommun   int
	}{
		{id: 1, speedF: "70", speedB: "50", roadType: "bilnät", forbidF: "-1", kommun: 180},
		{id: 2, roadType: "cykelnät", kommun: 180},
		{id: 3, speedB: "40", forbidF: "-1", forbidB: "-1", kommun: 181},
		{id: 4, speedF: "okänd", kommun: 180},
	}
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO SverigepaketTP VALUES (?, ?, 73, 1, 100.0, ?, ?, ?, ?, ?, ?)`,
			r.id, geoPackageBlob(t, line), r.speedF, r.speedB, r.roadType, r.forbidF, r.forbidB, r.kommun)
		require.NoError(t, err)
	}

	return path
}

func TestReadGeoPackage(t *testing.T) {
	path := geoPackageFixture(t)

	roads, err := ReadGeoPackage(context.Background(), path, "ORDER BY id")
	require.NoError(t, err)
	require.Len(t, roads, 3)

	first := roads[0]
	assert.Equal(t, int32(1), first.UniqueID)
	assert.Equal(t, int32(73), first.MainNumber)
	assert.Equal(t, int32(1), first.SubNumber)
	assert.Equal(t, 100.0, first.Length)
	assert.Equal(t, 60.0, first.SpeedLimit)
	assert.Equal(t, entity.DirectionBackward, first.Direction)
	require.Len(t, first.Coordinates, 2)
	assert.InDelta(t, 59.33, first.Coordinates[0].Latitude, 0.01)
	assert.InDelta(t, 18.06, first.Coordinates[0].Longitude, 0.01)
	assert.Greater(t, first.Coordinates[1].Longitude, first.Coordinates[0].Longitude)

	assert.Equal(t, int32(3), roads[1].UniqueID)
	assert.Equal(t, 40.0, roads[1].SpeedLimit)
	assert.Equal(t, entity.DirectionNone, roads[1].Direction)

	assert.Equal(t, int32(4), roads[2].UniqueID)
	assert.Zero(t, roads[2].SpeedLimit)
	assert.Equal(t, entity.DirectionBoth, roads[2].Direction)
}

func TestReadGeoPackage_Filter(t *testing.T) {
	roads, err := ReadGeoPackage(context.Background(), geoPackageFixture(t), "WHERE kommun = 181")
	require.NoError(t, err)
	require.Len(t, roads, 1)
	assert.Equal(t, int32(3), roads[0].UniqueID)
}

func TestReadGeoPackage_MissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gpkg")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE other (id INTEGER)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = ReadGeoPackage(context.Background(), path, "")
	assert.Error(t, err)
}

func TestDecodeGeoPackageGeometry(t *testing.T) {
	line := orb.LineString{{1, 2}, {3, 4}}

	geom, err := decodeGeoPackageGeometry(geoPackageBlob(t, line))
	require.NoError(t, err)
	assert.Equal(t, line, geom)

	withEnvelope := geoPackageBlob(t, line)
	withEnvelope[3] |= 1 << 1
	envelope := make([]byte, 32)
	withEnvelope = append(withEnvelope[:8], append(envelope, withEnvelope[8:]...)...)
	geom, err = decodeGeoPackageGeometry(withEnvelope)
	require.NoError(t, err)
	assert.Equal(t, line, geom)

	_, err = decodeGeoPackageGeometry([]byte("XX\x00\x01\x00\x00\x00\x00"))
	assert.ErrorIs(t, err, errGeoPackageGeometry)
}

func TestForbiddenToDirection(t *testing.T) {
	assert.Equal(t, entity.DirectionBoth, forbiddenToDirection(false, false))
	assert.Equal(t, entity.DirectionBackward, forbiddenToDirection(true, false))
	assert.Equal(t, entity.DirectionForward, forbiddenToDirection(false, true))
	assert.Equal(t, entity.DirectionNone, forbiddenToDirection(true, true))
}
