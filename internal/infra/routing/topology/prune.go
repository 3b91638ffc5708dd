package topology

import (
	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/progress"
	"roadnet/internal/infra/routing/geo"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/spatial"
)

// PruneBySensorDistance removes every node further than maxDist metres from
// all sensors and returns how many were removed. Nodes whose distance to the
// sensor centroid exceeds maxDist plus the sensor spread are dropped without
// an index lookup.
func PruneBySensorDistance(g *graph.Graph, sensors []entity.SensorSample, maxDist float64, workers int, obs progress.Observer) (int, error) {
	if len(sensors) == 0 {
		return 0, ErrNoSensors
	}
	obs = progress.OrNoop(obs)

	points := make([]entity.Point, len(sensors))
	for i, s := range sensors {
		points[i] = s.Point
	}
	centroid := geo.Centroid(points)
	var spread float64
	for _, p := range points {
		spread = max(spread, geo.Distance(centroid, p))
	}
	index := spatial.SensorIndex(sensors)

	ids := g.NodeIDs()
	far := make([]bool, len(ids))
	chunked(len(ids), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			p := g.NodeMut(ids[i]).Point
			if geo.Distance(p, centroid)-spread > maxDist {
				far[i] = true

				continue
			}
			nearest, ok := index.Nearest(p, spatial.Geodesic)
			far[i] = !ok || nearest.Distance > maxDist
		}
		obs.Tick(StepPrune, hi-lo)
	})

	var removed int
	for i, id := range ids {
		if far[i] && g.RemoveNode(id) {
			removed++
		}
	}

	return removed, nil
}
