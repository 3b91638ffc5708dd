package topology

import (
	"slices"

	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/progress"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/spatial"
)

// AssignSensors attaches every sensor to its geodesically nearest node.
// Sensors sharing a node are averaged into one reading that keeps the first
// sensor's site id and side; in SensorList mode each sensor is also recorded
// in the sensor store. Returns the number of nodes that received sensors.
func AssignSensors(pg *graph.ProcessedGraph, sensors []entity.SensorSample, mode SensorMode, workers int, obs progress.Observer) int {
	obs = progress.OrNoop(obs)
	g := pg.Graph
	if g.NodeCount() == 0 || len(sensors) == 0 {
		return 0
	}
	index := spatial.NodeIndex(g)

	nearest := make([]graph.NodeID, len(sensors))
	chunked(len(sensors), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			n, _ := index.Nearest(sensors[i].Point, spatial.Geodesic)
			nearest[i] = n.Value
		}
		obs.Tick(StepAssignSensors, hi-lo)
	})

	groups := make(map[graph.NodeID][]entity.SensorSample)
	for i, id := range nearest {
		groups[id] = append(groups[id], sensors[i])
	}

	nodes := make([]graph.NodeID, 0, len(groups))
	for id := range groups {
		nodes = append(nodes, id)
	}
	slices.Sort(nodes)

	for _, id := range nodes {
		group := groups[id]
		avg := averageSamples(group)
		g.NodeMut(id).Sensor = &avg

		if mode == SensorList {
			for _, s := range group {
				pg.Sensors.Add(id, entity.SensorMetadata{
					SiteID:      s.SiteID,
					Point:       s.Point,
					Side:        s.Side,
					VehicleType: entity.VehicleAny,
					Lane:        s.Lane,
				})
			}
		}
	}

	return len(nodes)
}

func averageSamples(group []entity.SensorSample) entity.SensorSample {
	avg := entity.SensorSample{SiteID: group[0].SiteID, Side: group[0].Side, Lane: 1}
	for _, s := range group {
		avg.FlowRate += s.FlowRate
		avg.AverageSpeed += s.AverageSpeed
		avg.Point.Latitude += s.Point.Latitude
		avg.Point.Longitude += s.Point.Longitude
	}

	n := float64(len(group))
	avg.FlowRate /= n
	avg.AverageSpeed /= n
	avg.Point.Latitude /= n
	avg.Point.Longitude /= n

	return avg
}
