package graph

import (
	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/routing/geo"
)

// MergeEdges folds a chain of consecutive edges into a single edge: the
// distances are summed and the polylines concatenated, dropping the first
// vertex of each later polyline when it repeats the junction. Speed limits
// are weighted by each edge's distance. The merged edge starts at start and
// ends at end; its midpoint is theirs.
func MergeEdges(start, end Node, chain []Edge) Edge {
	merged := Edge{
		Midpoint:       geo.Midpoint(start.Point, end.Point),
		OriginalRoadID: ConnectorRoadID,
	}
	if len(chain) == 0 {
		return merged
	}

	first := chain[0]
	merged.MainNumber = first.MainNumber
	merged.SubNumber = first.SubNumber
	merged.Direction = first.Direction
	merged.IsConnector = true

	var weightedLimit, limitDistance float64
	for _, e := range chain {
		merged.Distance += e.Distance
		merged.IsConnector = merged.IsConnector && e.IsConnector

		points := e.Polyline
		if n := len(merged.Polyline); n > 0 && len(points) > 0 && merged.Polyline[n-1] == points[0] {
			points = points[1:]
		}
		merged.Polyline = append(merged.Polyline, points...)

		if e.SpeedLimit != nil {
			weightedLimit += *e.SpeedLimit * e.Distance
			limitDistance += e.Distance
		}
		if e.Direction != merged.Direction {
			merged.Direction = entity.DirectionBoth
		}
	}

	switch {
	case limitDistance > 0:
		limit := weightedLimit / limitDistance
		merged.SpeedLimit = &limit
	case first.SpeedLimit != nil:
		// zero-length chain; keep the first limit rather than dividing by zero
		limit := *first.SpeedLimit
		merged.SpeedLimit = &limit
	}

	return merged
}
