package graph

import (
	"roadnet/internal/domain/entity"

	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"
)

// EncodePolyline renders points in the Google encoded polyline format.
func EncodePolyline(points []entity.Point) string {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Latitude, p.Longitude})
	}

	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline parses an encoded polyline.
func DecodePolyline(s string) ([]entity.Point, error) {
	coords, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, err
	}

	points := make([]entity.Point, len(coords))
	for i, c := range coords {
		points[i] = entity.Point{Latitude: c[0], Longitude: c[1]}
	}

	return points, nil
}

// ExportOptions selects what ToGeoJSON emits.
type ExportOptions struct {
	Nodes      bool
	Edges      bool
	Connectors bool
}

// ToGeoJSON renders the graph as a feature collection for map viewers.
// Edges become line strings following their polylines (connectors are
// drawn endpoint to endpoint); nodes become points.
func ToGeoJSON(pg *ProcessedGraph, opts ExportOptions) *geojson.FeatureCollection {
	g := pg.Graph
	fc := geojson.NewFeatureCollection()

	if opts.Edges {
		for _, id := range g.EdgeIDs() {
			slot := g.edges[id]
			e := slot.data
			if e.IsConnector && !opts.Connectors {
				continue
			}

			points := e.Polyline
			if len(points) < 2 {
				points = []entity.Point{g.nodes[slot.from].data.Point, g.nodes[slot.to].data.Point}
			}

			f := geojson.NewFeature(entity.LineString(points))
			f.ID = int(id)
			f.Properties["kind"] = "edge"
			f.Properties["from"] = int(slot.from)
			f.Properties["to"] = int(slot.to)
			f.Properties["distance"] = e.Distance
			f.Properties["road_id"] = e.OriginalRoadID
			f.Properties["main_number"] = e.MainNumber
			f.Properties["sub_number"] = e.SubNumber
			f.Properties["connector"] = e.IsConnector
			f.Properties["direction"] = e.Direction.String()
			f.Properties["polyline"] = EncodePolyline(points)
			if e.SpeedLimit != nil {
				f.Properties["speed_limit"] = *e.SpeedLimit
			}
			fc.Append(f)
		}
	}

	if opts.Nodes {
		for _, id := range g.NodeIDs() {
			n := g.nodes[id].data

			f := geojson.NewFeature(n.Point.Orb())
			f.ID = int(id)
			f.Properties["kind"] = "node"
			f.Properties["heading"] = n.Heading
			f.Properties["cap"] = n.IsCap
			f.Properties["road_id"] = n.OriginalRoadID
			if n.Sensor != nil {
				f.Properties["site_id"] = n.Sensor.SiteID
				f.Properties["average_speed"] = n.Sensor.AverageSpeed
				f.Properties["flow_rate"] = n.Sensor.FlowRate
			}
			if sensors := pg.Sensors[id]; len(sensors) > 0 {
				f.Properties["sensor_count"] = len(sensors)
			}
			fc.Append(f)
		}
	}

	return fc
}

// PathGeoJSON renders a node path as a single line string feature.
func PathGeoJSON(g *Graph, path []NodeID, properties map[string]any) *geojson.Feature {
	points := PathPolyline(g, path)
	f := geojson.NewFeature(entity.LineString(points))
	for k, v := range properties {
		f.Properties[k] = v
	}
	f.Properties["polyline"] = EncodePolyline(points)

	return f
}

// PathPolyline stitches the geometry of a node path: the polyline of the
// connecting edge for each hop, or the two node positions for connectors.
func PathPolyline(g *Graph, path []NodeID) []entity.Point {
	var points []entity.Point
	appendPoints := func(ps ...entity.Point) {
		for _, p := range ps {
			if n := len(points); n > 0 && points[n-1] == p {
				continue
			}
			points = append(points, p)
		}
	}

	for i, id := range path {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		if i == 0 {
			appendPoints(n.Point)

			continue
		}

		edges := g.EdgesConnecting(path[i-1], id)
		if len(edges) > 0 {
			if e := g.edges[edges[0]].data; len(e.Polyline) > 0 {
				appendPoints(e.Polyline...)
			}
		}
		appendPoints(n.Point)
	}

	return points
}
