package roads

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	_ "modernc.org/sqlite"
)

const (
	gpkgTable    = "SverigepaketTP"
	gpkgUTMZone  = 33
	gpkgCarRoads = "bilnät"
	// forbidden direction columns hold -1 when travel that way is forbidden
	gpkgForbidden = -1
)

const gpkgSelect = `SELECT geom,
	"Vagnummer_Huvudnummer_Vard", "Vagnummer_Undernummer", "_length", "id",
	"Hastighetsgrans_HogstaTillatnaHastighet_F", "Hastighetsgrans_HogstaTillatnaHastighet_B",
	"Vagtrafiknat_Vagtrafiknattyp", "ForbjudenFardriktning_F", "ForbjudenFardriktning_B"
FROM ` + gpkgTable

var errGeoPackageGeometry = errors.New("invalid geopackage geometry")

type gpkgRow struct {
	geom       []byte
	mainNumber int32
	subNumber  int32
	length     float64
	id         int32
	speedF     sql.NullString
	speedB     sql.NullString
	roadType   sql.NullString
	forbiddenF sql.NullString
	forbiddenB sql.NullString
}

// ReadGeoPackage reads the road table of a GeoPackage export in UTM zone 33.
// filter is appended to the select verbatim (e.g. "WHERE kommun = 180").
// Rows whose road network type is set to anything but car roads are dropped.
func ReadGeoPackage(ctx context.Context, path, filter string) ([]entity.RoadSegment, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open geopackage")
	}
	defer db.Close()

	query := gpkgSelect
	if filter = strings.TrimSpace(filter); filter != "" {
		query += " " + filter
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "query geopackage roads")
	}
	defer rows.Close()

	var (
		roads   []entity.RoadSegment
		dropped int
	)
	for rows.Next() {
		var row gpkgRow
		if err := rows.Scan(&row.geom, &row.mainNumber, &row.subNumber, &row.length, &row.id,
			&row.speedF, &row.speedB, &row.roadType, &row.forbiddenF, &row.forbiddenB); err != nil {
			return nil, errors.Wrap(err, "scan geopackage row")
		}

		road, ok, err := row.road()
		if err != nil {
			return nil, errors.Wrapf(err, "road %d", row.id)
		}
		if !ok {
			dropped++

			continue
		}
		roads = append(roads, road)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "read geopackage roads")
	}

	slog.Default().Info("Read GeoPackage roads", "roads", len(roads), "dropped", dropped)

	return roads, nil
}

// road converts a row; ok is false for rows that are not car roads.
func (r gpkgRow) road() (entity.RoadSegment, bool, error) {
	if r.roadType.Valid && r.roadType.String != gpkgCarRoads {
		return entity.RoadSegment{}, false, nil
	}

	geom, err := decodeGeoPackageGeometry(r.geom)
	if err != nil {
		return entity.RoadSegment{}, false, err
	}

	var coords []orb.Point
	switch g := geom.(type) {
	case orb.LineString:
		coords = g
	case orb.MultiLineString:
		for _, ls := range g {
			coords = append(coords, ls...)
		}
	default:
		return entity.RoadSegment{}, false, errors.Wrapf(errGeoPackageGeometry, "unexpected %s", geom.GeoJSONType())
	}

	points := make([]entity.Point, len(coords))
	for i, c := range coords {
		points[i] = utmToWGS84(c[0], c[1], gpkgUTMZone)
	}

	return entity.RoadSegment{
		Direction:   forbiddenToDirection(isForbidden(r.forbiddenF), isForbidden(r.forbiddenB)),
		MainNumber:  r.mainNumber,
		SubNumber:   r.subNumber,
		Coordinates: points,
		Length:      r.length,
		UniqueID:    r.id,
		SpeedLimit:  averageSpeedLimit(r.speedF, r.speedB),
	}, true, nil
}

func isForbidden(v sql.NullString) bool {
	if !v.Valid {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.String))

	return err == nil && n == gpkgForbidden
}

func forbiddenToDirection(forward, backward bool) entity.RoadDirection {
	switch {
	case forward && backward:
		return entity.DirectionNone
	case forward:
		return entity.DirectionBackward
	case backward:
		return entity.DirectionForward
	default:
		return entity.DirectionBoth
	}
}

// averageSpeedLimit averages the limits given for both travel directions.
// Unparseable values count as 0; absent values are ignored.
func averageSpeedLimit(f, b sql.NullString) float64 {
	parse := func(v sql.NullString) float64 {
		speed, err := strconv.ParseFloat(strings.TrimSpace(v.String), 64)
		if err != nil {
			return 0
		}

		return speed
	}

	switch {
	case f.Valid && b.Valid:
		return (parse(f) + parse(b)) / 2
	case f.Valid:
		return parse(f)
	case b.Valid:
		return parse(b)
	default:
		return 0
	}
}

// decodeGeoPackageGeometry strips the GeoPackage binary header ("GP",
// version, flags, srs id, optional envelope) and decodes the WKB body.
func decodeGeoPackageGeometry(blob []byte) (orb.Geometry, error) {
	if len(blob) < 8 || blob[0] != 'G' || blob[1] != 'P' {
		return nil, errors.Wrap(errGeoPackageGeometry, "missing GP header")
	}

	flags := blob[3]
	var envelope int
	switch (flags >> 1) & 0x07 {
	case 0:
	case 1:
		envelope = 32
	case 2, 3:
		envelope = 48
	case 4:
		envelope = 64
	default:
		return nil, errors.Wrapf(errGeoPackageGeometry, "envelope code %d", (flags>>1)&0x07)
	}

	start := 8 + envelope
	if len(blob) < start {
		return nil, errors.Wrap(errGeoPackageGeometry, "truncated header")
	}

	geom, err := wkb.Unmarshal(blob[start:])
	if err != nil {
		return nil, errors.Wrap(err, "decode wkb")
	}

	return geom, nil
}
