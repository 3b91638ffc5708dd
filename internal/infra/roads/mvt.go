package roads

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"
	"roadnet/internal/infra/routing/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
)

// DefaultMVTLayer is the road layer name of OpenMapTiles-style tiles.
const DefaultMVTLayer = "transportation"

// MVTReader extracts roads from the road layer of vector tiles.
type MVTReader struct {
	layer  string
	nextID int32
}

// NewMVTReader creates a reader for the named layer (DefaultMVTLayer when empty).
// Unique ids continue across tiles parsed by the same reader.
func NewMVTReader(layer string) *MVTReader {
	if layer == "" {
		layer = DefaultMVTLayer
	}

	return &MVTReader{layer: layer}
}

// ParseTile decodes a (possibly gzipped) tile and returns its roads in WGS84.
func (p *MVTReader) ParseTile(data []byte, tile maptile.Tile) ([]entity.RoadSegment, error) {
	layers, err := mvt.UnmarshalGzipped(data)
	if err != nil {
		layers, err = mvt.Unmarshal(data)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	var roadLayer *mvt.Layer
	for _, layer := range layers {
		if layer.Name == p.layer {
			roadLayer = layer

			break
		}
	}
	if roadLayer == nil {
		return []entity.RoadSegment{}, nil
	}

	roadLayer.ProjectToWGS84(tile)

	roads := make([]entity.RoadSegment, 0, len(roadLayer.Features))
	for _, feature := range roadLayer.Features {
		for _, points := range lineParts(feature) {
			roads = append(roads, p.road(feature, points))
		}
	}

	return roads, nil
}

func (p *MVTReader) road(feature *geojson.Feature, points []entity.Point) entity.RoadSegment {
	highway := stringProperty(feature, "class", "highway", "type")

	speed, ok := parseMaxSpeed(stringProperty(feature, "maxspeed"))
	if !ok {
		speed = speedForHighway(highway)
	}

	dir := entity.DirectionBoth
	if boolProperty(feature, "oneway") {
		dir = entity.DirectionForward
	}

	road := entity.RoadSegment{
		Direction:   dir,
		MainNumber:  leadingNumber(stringProperty(feature, "ref")),
		Coordinates: points,
		Length:      geo.PolylineLength(points),
		UniqueID:    p.nextID,
		SpeedLimit:  speed,
	}
	p.nextID++

	return road
}

// lineParts returns the line geometry of a feature; each part of a
// MultiLineString is its own road.
func lineParts(feature *geojson.Feature) [][]entity.Point {
	var lines []orb.LineString
	switch geom := feature.Geometry.(type) {
	case orb.LineString:
		lines = []orb.LineString{geom}
	case orb.MultiLineString:
		lines = geom
	default:
		return nil
	}

	parts := make([][]entity.Point, 0, len(lines))
	for _, ls := range lines {
		if len(ls) >= 2 {
			parts = append(parts, entity.PointsFromLineString(ls))
		}
	}

	return parts
}

func stringProperty(feature *geojson.Feature, keys ...string) string {
	for _, key := range keys {
		if val, ok := feature.Properties[key]; ok {
			if str, ok := val.(string); ok {
				return str
			}
		}
	}

	return ""
}

func boolProperty(feature *geojson.Feature, key string) bool {
	if val, ok := feature.Properties[key]; ok {
		switch value := val.(type) {
		case bool:
			return value
		case int:
			return value != 0
		case int64:
			return value != 0
		case float64:
			return value != 0
		case string:
			return value == "yes" || value == "true" || value == "1"
		}
	}

	return false
}

// ReadTileFile reads a tile stored as .../z/x/y.mvt (or .pbf).
func ReadTileFile(path, layer string) ([]entity.RoadSegment, error) {
	tile, err := tileFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewMVTReader(layer).ParseTile(data, tile)
}

func tileFromPath(path string) (maptile.Tile, error) {
	y := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	xDir := filepath.Dir(path)
	x := filepath.Base(xDir)
	z := filepath.Base(filepath.Dir(xDir))

	var coords [3]uint64
	for i, s := range []string{z, x, y} {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return maptile.Tile{}, errors.Wrapf(ErrInvalidRecord, "tile path %s is not z/x/y", path)
		}
		coords[i] = n
	}

	return maptile.New(uint32(coords[1]), uint32(coords[2]), maptile.Zoom(coords[0])), nil
}
