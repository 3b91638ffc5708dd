// Package traversal searches the road graph: a best-first search over a
// sorted frontier, shortest paths through several waypoints, cost-bounded
// reachability and waypoint resolution against the spatial index.
package traversal

import (
	"math"
	"strings"

	"roadnet/internal/infra/routing/geo"
	"roadnet/internal/infra/routing/graph"

	"github.com/pkg/errors"
)

// ErrUnknownMetric is returned by ParseMetric for unrecognised names.
var ErrUnknownMetric = errors.New("unknown metric")

// Metric is the edge cost a search minimises.
type Metric uint8

const (
	// Space costs an edge by its geodesic length in metres.
	Space Metric = iota
	// Time costs an edge by its length over its speed limit, in seconds.
	Time
)

func (m Metric) String() string {
	if m == Time {
		return "time"
	}

	return "space"
}

// Unit is the unit of the metric's costs.
func (m Metric) Unit() string {
	if m == Time {
		return "s"
	}

	return "m"
}

// ParseMetric parses "space" or "time", case-insensitively.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "space", "distance":
		return Space, nil
	case "time":
		return Time, nil
	default:
		return Space, errors.Wrapf(ErrUnknownMetric, "%q", s)
	}
}

func (m Metric) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed

	return nil
}

// Cost returns the cost of traversing e and the speed in km/h to carry
// along the path. An edge without a speed limit inherits lastKmh. Under
// Time, a non-positive speed makes the edge impassable (+Inf).
func (m Metric) Cost(e *graph.Edge, lastKmh float64) (cost, kmh float64) {
	kmh = lastKmh
	if e.SpeedLimit != nil {
		kmh = *e.SpeedLimit
	}

	if m == Space {
		return e.Distance, kmh
	}
	if kmh <= 0 {
		return math.Inf(1), kmh
	}

	return e.Distance / geo.KmhToMs(kmh), kmh
}
