package roads

import (
	"context"
	"io"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"
	"roadnet/internal/infra/routing/geo"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
)

var carHighways = map[string]bool{
	"motorway": true, "trunk": true, "primary": true, "secondary": true,
	"tertiary": true, "unclassified": true, "residential": true,
	"living_street": true, "service": true, "motorway_link": true,
	"trunk_link": true, "primary_link": true, "secondary_link": true,
	"tertiary_link": true,
}

// ReadOSM reads the car-usable ways of an OSM XML document as roads.
// Nodes may appear anywhere in the document; ways referring to missing
// nodes lose those vertices. Unique ids are assigned in document order.
func ReadOSM(ctx context.Context, r io.Reader) ([]entity.RoadSegment, error) {
	scanner := osmxml.New(ctx, r)
	defer scanner.Close()

	nodes := make(map[osm.NodeID]entity.Point)
	var ways []*osm.Way

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			nodes[o.ID] = entity.NewPoint(o.Lat, o.Lon)
		case *osm.Way:
			if usedByCars(o.TagMap()) {
				ways = append(ways, o)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan osm")
	}

	roads := make([]entity.RoadSegment, 0, len(ways))
	for _, way := range ways {
		points := make([]entity.Point, 0, len(way.Nodes))
		for _, wn := range way.Nodes {
			if p, ok := nodes[wn.ID]; ok {
				points = append(points, p)
			}
		}
		if len(points) < 2 {
			continue
		}

		tags := way.TagMap()
		speed, ok := parseMaxSpeed(tags["maxspeed"])
		if !ok {
			speed = speedForHighway(tags["highway"])
		}

		roads = append(roads, entity.RoadSegment{
			Direction:   wayDirection(tags),
			MainNumber:  leadingNumber(tags["ref"]),
			Coordinates: points,
			Length:      geo.PolylineLength(points),
			UniqueID:    int32(len(roads)),
			SpeedLimit:  speed,
		})
	}

	return roads, nil
}

func usedByCars(tags map[string]string) bool {
	highway, ok := tags["highway"]
	if !ok {
		return false
	}
	if tags["motorcar"] == "no" || tags["motor_vehicle"] == "no" {
		return false
	}
	if access, ok := tags["access"]; ok {
		switch access {
		case "yes", "permissive", "designated", "delivery", "destination":
		default:
			return false
		}
	}
	if oneway := tags["oneway"]; oneway == "reversible" || oneway == "alternating" {
		return false
	}

	return carHighways[highway]
}

func wayDirection(tags map[string]string) entity.RoadDirection {
	switch tags["oneway"] {
	case "yes", "true", "1":
		return entity.DirectionForward
	case "-1", "reverse":
		return entity.DirectionBackward
	case "no", "false", "0":
		return entity.DirectionBoth
	}

	if tags["junction"] == "roundabout" || tags["highway"] == "motorway" {
		return entity.DirectionForward
	}

	return entity.DirectionBoth
}
