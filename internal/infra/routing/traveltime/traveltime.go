// Package traveltime estimates how long a path takes to drive from the
// sensor readings found along it.
package traveltime

import (
	"context"
	"math"
	"time"

	"roadnet/internal/domain/entity"
	"roadnet/internal/domain/repository"
	"roadnet/internal/errors"
	"roadnet/internal/infra/routing/geo"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/traversal"
)

// ErrNoSensorData is returned alongside a nominal-speed estimate when no
// reading was found along the path.
var ErrNoSensorData = errors.New("no sensor data on path")

// Reading is the traffic measured at a site.
type Reading struct {
	AverageSpeedKmh float64   `json:"average_speed_kmh"`
	FlowRate        float64   `json:"flow_rate"`
	Time            time.Time `json:"time"`
}

// Readings maps site ids to their reading.
type Readings map[int32]Reading

// Options tunes an estimate.
type Options struct {
	// NominalSpeedKmh is assumed for the whole path when it carries no readings.
	NominalSpeedKmh float64
	// VehicleType restricts store sensors to one vehicle class; empty keeps all.
	VehicleType entity.VehicleType
}

// Sample is a sensor speed observed at a cumulative distance along the path.
type Sample struct {
	Node     graph.NodeID `json:"node"`
	Distance float64      `json:"distance"`
	SpeedKmh float64      `json:"speed_kmh"`
}

// Result is a travel-time estimate.
type Result struct {
	Seconds     float64  `json:"seconds"`
	Distance    float64  `json:"distance"`
	Samples     []Sample `json:"samples"`
	MissingData bool     `json:"missing_data"`
}

// Estimate walks path, samples the mean reading at every sensor node and
// integrates the time between samples: the lead-in at the first sample's
// speed, each gap at 2Δd/(v₁+v₂), and the tail at the last sample's speed.
// Without samples it falls back to the nominal speed and returns the
// estimate together with ErrNoSensorData.
func Estimate(pg *graph.ProcessedGraph, path []graph.NodeID, readings Readings, opts Options) (Result, error) {
	var res Result
	for i, id := range path {
		if i > 0 {
			d, err := traversal.PathDistance(pg.Graph, path[i-1:i+1])
			if err != nil {
				return Result{}, err
			}
			res.Distance += d
		}

		if speed, ok := nodeSpeed(pg, id, readings, opts.VehicleType); ok {
			res.Samples = append(res.Samples, Sample{Node: id, Distance: res.Distance, SpeedKmh: speed})
		}
	}

	if len(res.Samples) == 0 {
		res.MissingData = true
		if opts.NominalSpeedKmh > 0 {
			res.Seconds = res.Distance / geo.KmhToMs(opts.NominalSpeedKmh)
		}

		return res, ErrNoSensorData
	}

	res.Seconds = integrate(res.Samples, res.Distance)

	return res, nil
}

func integrate(samples []Sample, total float64) float64 {
	first := samples[0]
	seconds := first.Distance / geo.KmhToMs(first.SpeedKmh)

	for i := 1; i < len(samples); i++ {
		prev, next := samples[i-1], samples[i]
		seconds += 2 * (next.Distance - prev.Distance) / geo.KmhToMs(prev.SpeedKmh+next.SpeedKmh)
	}

	last := samples[len(samples)-1]

	return seconds + (total-last.Distance)/geo.KmhToMs(last.SpeedKmh)
}

// siteIDs lists the sites observed at n: the store entries when there are
// any, otherwise the node's own reading.
func siteIDs(pg *graph.ProcessedGraph, n graph.NodeID, vehicle entity.VehicleType) []int32 {
	if sensors := pg.Sensors[n]; len(sensors) > 0 {
		ids := make([]int32, 0, len(sensors))
		for _, s := range sensors {
			if vehicle == "" || s.VehicleType == vehicle {
				ids = append(ids, s.SiteID)
			}
		}

		return ids
	}

	if node := pg.Graph.NodeMut(n); node != nil && node.HasSensor() {
		return []int32{node.Sensor.SiteID}
	}

	return nil
}

// nodeSpeed averages the positive speeds read at the sites of n.
func nodeSpeed(pg *graph.ProcessedGraph, n graph.NodeID, readings Readings, vehicle entity.VehicleType) (float64, bool) {
	var sum float64
	var count int
	for _, site := range siteIDs(pg, n, vehicle) {
		r, ok := readings[site]
		if !ok || r.AverageSpeedKmh <= 0 {
			continue
		}
		sum += r.AverageSpeedKmh
		count++
	}
	if count == 0 {
		return 0, false
	}

	return sum / float64(count), true
}

// StaticReadings builds readings from the sensor readings stored on the
// graph's nodes. Every site attached to a node gets that node's reading.
func StaticReadings(pg *graph.ProcessedGraph) Readings {
	out := make(Readings)
	for _, id := range pg.Graph.NodeIDs() {
		node := pg.Graph.NodeMut(id)
		if !node.HasSensor() {
			continue
		}
		r := Reading{AverageSpeedKmh: node.Sensor.AverageSpeed, FlowRate: node.Sensor.FlowRate}
		out[node.Sensor.SiteID] = r
		for _, s := range pg.Sensors[id] {
			out[s.SiteID] = r
		}
	}

	return out
}

// Filter selects the stored readings used by Live.
type Filter struct {
	// At is the moment of interest; zero means now.
	At time.Time
	// MaxAge bounds how old a reading may be; zero accepts any age.
	MaxAge time.Duration
}

// PathSensors returns the store sensors attached to the nodes of path,
// optionally restricted to one vehicle type.
func PathSensors(pg *graph.ProcessedGraph, path []graph.NodeID, vehicle entity.VehicleType) []entity.SensorMetadata {
	var out []entity.SensorMetadata
	for _, id := range path {
		for _, s := range pg.Sensors[id] {
			if vehicle == "" || s.VehicleType == vehicle {
				out = append(out, s)
			}
		}
	}

	return out
}

// Live estimates the travel time of path from the readings stored in repo
// at filter.At.
func Live(ctx context.Context, repo repository.SensorRepository, pg *graph.ProcessedGraph, path []graph.NodeID, filter Filter, opts Options) (Result, error) {
	at := filter.At
	if at.IsZero() {
		at = time.Now()
	}
	maxAge := filter.MaxAge
	if maxAge <= 0 {
		maxAge = time.Duration(math.MaxInt64)
	}

	data, err := repo.GetSensorDataAt(ctx, PathSensors(pg, path, opts.VehicleType), at, maxAge)
	if err != nil {
		return Result{}, errors.Wrap(err, "fetch sensor data")
	}

	readings := make(Readings, len(data))
	for site, p := range data {
		readings[site] = Reading{AverageSpeedKmh: p.AverageSpeed, FlowRate: p.FlowRate, Time: p.Time}
	}

	return Estimate(pg, path, readings, opts)
}

// FromSpeedLimits is the travel time of path when every edge is driven at
// its speed limit, with limit-less edges at the last limit seen and
// defaultKmh before any.
func FromSpeedLimits(g *graph.Graph, path []graph.NodeID, defaultKmh float64) (float64, error) {
	var seconds float64
	kmh := defaultKmh
	for i := 1; i < len(path); i++ {
		ids := g.EdgesConnecting(path[i-1], path[i])
		if len(ids) == 0 {
			return 0, errors.AtEdge(graph.ErrEdgeNotFound, path[i-1], path[i])
		}

		best, bestKmh := math.Inf(1), kmh
		for _, id := range ids {
			if cost, speed := traversal.Time.Cost(g.EdgeMut(id), kmh); cost < best {
				best, bestKmh = cost, speed
			}
		}
		seconds += best
		kmh = bestKmh
	}

	return seconds, nil
}
