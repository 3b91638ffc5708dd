// Package roads reads road centerlines and sensor samples from the formats
// the network is delivered in: processed road JSON, the raw road feed,
// GeoJSON, OSM XML, GeoPackage exports, vector tiles and PMTiles archives.
package roads

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"

	"github.com/paulmach/orb"
)

var (
	// ErrUnsupportedFormat is returned for files whose format cannot be told from the name.
	ErrUnsupportedFormat = errors.New("unsupported road file format")
	// ErrInvalidRecord is returned when an input record cannot be turned into a road or sensor.
	ErrInvalidRecord = errors.New("invalid input record")
)

// Format names a road input format.
type Format string

const (
	FormatRoadJSON   Format = "json"
	FormatRawJSON    Format = "raw"
	FormatGeoJSON    Format = "geojson"
	FormatOSM        Format = "osm"
	FormatGeoPackage Format = "gpkg"
	FormatMVT        Format = "mvt"
	FormatPMTiles    Format = "pmtiles"
)

// ErrBoundsRequired is returned when a tiled archive is read without an area.
var ErrBoundsRequired = errors.New("bounds are required to read a tile archive")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatRoadJSON, FormatRawJSON, FormatGeoJSON, FormatOSM, FormatGeoPackage, FormatMVT, FormatPMTiles:
		return f, nil
	}

	return "", errors.Wrapf(ErrUnsupportedFormat, "%q", s)
}

// FormatFromPath picks the format by file extension. Raw feed files must be
// named explicitly since they share the .json extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatRoadJSON, nil
	case ".geojson":
		return FormatGeoJSON, nil
	case ".osm", ".xml":
		return FormatOSM, nil
	case ".gpkg", ".sqlite":
		return FormatGeoPackage, nil
	case ".mvt", ".pbf":
		return FormatMVT, nil
	case ".pmtiles":
		return FormatPMTiles, nil
	}

	return "", errors.Wrapf(ErrUnsupportedFormat, "%s", path)
}

// Options tune the format-specific readers.
type Options struct {
	// GeoPackageFilter is appended to the GeoPackage select, e.g. a WHERE clause.
	GeoPackageFilter string
	// MVTLayer is the road layer name in vector tiles.
	MVTLayer string
	// Bounds limits a PMTiles read to the tiles covering it.
	Bounds *orb.Bound
	// PMTilesZoom is the zoom level PMTiles are read at.
	PMTilesZoom int
}

// ReadFile loads every road in path.
func ReadFile(ctx context.Context, path string, format Format, opts Options) ([]entity.RoadSegment, error) {
	switch format {
	case FormatGeoPackage:
		return ReadGeoPackage(ctx, path, opts.GeoPackageFilter)
	case FormatMVT:
		return ReadTileFile(path, opts.MVTLayer)
	case FormatPMTiles:
		if opts.Bounds == nil {
			return nil, ErrBoundsRequired
		}

		return ReadPMTiles(ctx, path, *opts.Bounds, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	switch format {
	case FormatRoadJSON:
		return ReadRoadJSON(f)
	case FormatRawJSON:
		return ParseRawRoads(f)
	case FormatGeoJSON:
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		return ReadGeoJSON(data)
	case FormatOSM:
		return ReadOSM(ctx, f)
	}

	return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
}

// ReadRoadJSON decodes an array of roads in their processed JSON form.
func ReadRoadJSON(r io.Reader) ([]entity.RoadSegment, error) {
	var roads []entity.RoadSegment
	if err := json.NewDecoder(r).Decode(&roads); err != nil {
		return nil, errors.Wrap(err, "decode road json")
	}

	return roads, nil
}

// WriteRoadJSON encodes roads in their processed JSON form.
func WriteRoadJSON(w io.Writer, roads []entity.RoadSegment) error {
	return errors.WithStack(json.NewEncoder(w).Encode(roads))
}

// ReadSensorJSON decodes an array of sensor samples in their processed JSON form.
func ReadSensorJSON(r io.Reader) ([]entity.SensorSample, error) {
	var sensors []entity.SensorSample
	if err := json.NewDecoder(r).Decode(&sensors); err != nil {
		return nil, errors.Wrap(err, "decode sensor json")
	}

	return sensors, nil
}

// WriteSensorJSON encodes sensor samples in their processed JSON form.
func WriteSensorJSON(w io.Writer, sensors []entity.SensorSample) error {
	return errors.WithStack(json.NewEncoder(w).Encode(sensors))
}

// ReadSensorFile loads sensor samples from a processed JSON, raw feed JSON or CSV file.
func ReadSensorFile(path string, raw bool) ([]entity.SensorSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	switch {
	case strings.EqualFold(filepath.Ext(path), ".csv"):
		return ReadSensorCSV(f)
	case raw:
		return ParseRawSensors(f)
	default:
		return ReadSensorJSON(f)
	}
}
