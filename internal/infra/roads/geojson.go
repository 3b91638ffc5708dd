package roads

import (
	"math"
	"strconv"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"
	"roadnet/internal/infra/routing/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ReadGeoJSON reads roads from a feature collection. Every LineString, and
// every part of a MultiLineString, becomes one road. Recognised properties:
// direction (Forward|Backward|Both|None or the raw feed vocabulary),
// main_number, sub_number, length, unique_id and speed_limit. Missing
// lengths are measured; missing ids are numbered after the largest given one.
func ReadGeoJSON(data []byte) ([]entity.RoadSegment, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode geojson roads")
	}

	var maxID int32 = -1
	for _, f := range fc.Features {
		if id, ok := explicitID(f); ok && id > maxID {
			maxID = id
		}
	}
	nextID := maxID + 1

	var roads []entity.RoadSegment
	for i, f := range fc.Features {
		var lines []orb.LineString
		switch g := f.Geometry.(type) {
		case orb.LineString:
			lines = []orb.LineString{g}
		case orb.MultiLineString:
			lines = g
		default:
			continue
		}

		dir, err := featureDirection(f.Properties)
		if err != nil {
			return nil, errors.Wrapf(err, "feature %d", i)
		}

		id, hasID := explicitID(f)
		for part, ls := range lines {
			if len(ls) < 2 {
				continue
			}

			road := entity.RoadSegment{
				Direction:   dir,
				MainNumber:  int32(number(f.Properties, "main_number", 0)),
				SubNumber:   int32(number(f.Properties, "sub_number", 0)),
				Coordinates: entity.PointsFromLineString(ls),
				SpeedLimit:  number(f.Properties, "speed_limit", 0),
			}
			road.Length = number(f.Properties, "length", math.NaN())
			if math.IsNaN(road.Length) || len(lines) > 1 {
				road.Length = geo.PolylineLength(road.Coordinates)
			}
			if hasID && part == 0 {
				road.UniqueID = id
			} else {
				road.UniqueID = nextID
				nextID++
			}
			roads = append(roads, road)
		}
	}

	return roads, nil
}

// RoadsToGeoJSON renders roads as line string features carrying the
// properties ReadGeoJSON understands.
func RoadsToGeoJSON(roads []entity.RoadSegment) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range roads {
		f := geojson.NewFeature(entity.LineString(r.Coordinates))
		f.Properties["direction"] = r.Direction.String()
		f.Properties["main_number"] = r.MainNumber
		f.Properties["sub_number"] = r.SubNumber
		f.Properties["length"] = r.Length
		f.Properties["unique_id"] = r.UniqueID
		if r.SpeedLimit > 0 {
			f.Properties["speed_limit"] = r.SpeedLimit
		}
		fc.Append(f)
	}

	return fc
}

func explicitID(f *geojson.Feature) (int32, bool) {
	id := number(f.Properties, "unique_id", math.NaN())
	if math.IsNaN(id) {
		return 0, false
	}

	return int32(id), true
}

// number reads a numeric property, accepting numeric strings.
func number(props geojson.Properties, key string, def float64) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}

	return def
}

func featureDirection(props geojson.Properties) (entity.RoadDirection, error) {
	label, _ := props["direction"].(string)
	if label == "" {
		return entity.DirectionBoth, nil
	}

	var dir entity.RoadDirection
	if err := dir.UnmarshalText([]byte(label)); err == nil {
		return dir, nil
	}

	return entity.ParseRawRoadDirection(label)
}
