// Package simulate replays travel-time estimates over a set of routes while
// overriding the readings of chosen sensors, to measure how sensitive a
// route's travel time is to each of them.
package simulate

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"strconv"

	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/progress"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/spatial"
	"roadnet/internal/infra/routing/traveltime"
	"roadnet/internal/infra/routing/traversal"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Step names reported to the observer.
const (
	StepResolve  = "simulate-resolve"
	StepRoute    = "simulate-route"
	StepScenario = "simulate-scenarios"
)

var (
	// ErrSensorNotOnPath is returned when a simulated site lies on none of the routes.
	ErrSensorNotOnPath = errors.New("sensor not on any path")
	// ErrInvalidMode is returned for a mode that yields no modification.
	ErrInvalidMode = errors.New("invalid sensor mode")
)

// ModificationKind selects how a reading is overridden.
type ModificationKind string

const (
	KindDeviation ModificationKind = "deviation"
	KindSetSpeed  ModificationKind = "set_speed"
)

// Modification overrides one sensor reading.
type Modification struct {
	Kind  ModificationKind `json:"kind"`
	Value float64          `json:"value"`
}

// Apply returns s with the modification applied to its average speed.
func (m Modification) Apply(s entity.SensorSample) entity.SensorSample {
	switch m.Kind {
	case KindDeviation:
		s.AverageSpeed *= m.Value
	case KindSetSpeed:
		s.AverageSpeed = m.Value
	}

	return s
}

// Mode generates the modifications of a sweep. Deviation walks the
// multiplier range [From, To] by Step; SetSpeed lists the speeds to force.
type Mode struct {
	Kind   ModificationKind `json:"kind" validate:"required,oneof=deviation set_speed"`
	From   float64          `json:"from"`
	To     float64          `json:"to"`
	Step   float64          `json:"step"`
	Speeds []float64        `json:"speeds"`
}

// Modifications expands the mode into its modifications, in order.
func (m Mode) Modifications() ([]Modification, error) {
	switch m.Kind {
	case KindDeviation:
		if m.Step <= 0 || m.To < m.From {
			return nil, errors.Wrapf(ErrInvalidMode, "deviation %v..%v step %v", m.From, m.To, m.Step)
		}
		var out []Modification
		for i := 0; ; i++ {
			v := m.From + float64(i)*m.Step
			if v > m.To+m.Step*1e-9 {
				break
			}
			out = append(out, Modification{Kind: KindDeviation, Value: v})
		}

		return out, nil
	case KindSetSpeed:
		if len(m.Speeds) == 0 {
			return nil, errors.Wrap(ErrInvalidMode, "set_speed without speeds")
		}
		out := make([]Modification, len(m.Speeds))
		for i, v := range m.Speeds {
			out[i] = Modification{Kind: KindSetSpeed, Value: v}
		}

		return out, nil
	default:
		return nil, errors.Wrapf(ErrInvalidMode, "kind %q", m.Kind)
	}
}

// Setup describes a simulation: the routes as waypoint queries, the sites
// whose readings are overridden, and how.
type Setup struct {
	Paths  [][]traversal.PointQuery `json:"paths" validate:"required,min=1"`
	Metric traversal.Metric         `json:"metric"`
	Sites  []int32                  `json:"sites"`
	Mode   Mode                     `json:"mode"`
	// FakeDataSpeed is the speed of the synthetic vehicles that would
	// have to be injected to move a reading, used for the debug log.
	FakeDataSpeed float64 `json:"fake_data_speed"`
}

// DefaultNominalSpeedKmh is assumed along routes without readings when
// Options leaves NominalSpeedKmh unset.
const DefaultNominalSpeedKmh = 70.0

// Options tunes a run.
type Options struct {
	IgnoreMissingSensors bool
	Workers              int
	DefaultSpeedKmh      float64
	// NominalSpeedKmh prices routes that carry no readings at all.
	NominalSpeedKmh float64
}

// Outcome is the estimate of one route under one modification.
type Outcome struct {
	PathIndex    int            `json:"path_index"`
	Nodes        []graph.NodeID `json:"nodes"`
	Length       float64        `json:"length"`
	TravelTime   float64        `json:"travel_time"`
	MissingData  bool           `json:"missing_data"`
	Modification Modification   `json:"modification"`
}

type route struct {
	nodes  []graph.NodeID
	length float64
}

// Run resolves and routes every path of setup on pg, then estimates each
// route under each modification. Scenarios run in parallel, each on its
// own copy of the graph trimmed to the routes.
func Run(ctx context.Context, pg *graph.ProcessedGraph, setup Setup, opts Options, observer progress.Observer, logger *slog.Logger) ([]Outcome, error) {
	observer = progress.OrNoop(observer)
	if logger == nil {
		logger = slog.Default()
	}
	if opts.NominalSpeedKmh <= 0 {
		opts.NominalSpeedKmh = DefaultNominalSpeedKmh
	}

	mods, err := setup.Mode.Modifications()
	if err != nil {
		return nil, err
	}

	routes, err := resolveRoutes(pg.Graph, setup, opts, observer)
	if err != nil {
		return nil, err
	}

	if err := checkSites(pg.Graph, routes, setup.Sites, opts.IgnoreMissingSensors, logger); err != nil {
		return nil, err
	}

	keep := make(map[graph.NodeID]struct{})
	for _, r := range routes {
		for _, n := range r.nodes {
			keep[n] = struct{}{}
		}
	}
	trimmed := &graph.ProcessedGraph{
		Graph: pg.Graph.Retain(func(id graph.NodeID, _ *graph.Node) bool {
			_, ok := keep[id]

			return ok
		}),
		Sensors: make(graph.SensorStore),
	}
	logger.Info("Trimmed graph to routes", "nodes", trimmed.Graph.NodeCount())

	outcomes := make([]Outcome, len(routes)*len(mods))
	observer.StepStarted(StepScenario, len(outcomes))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, r := range routes {
		for j, mod := range mods {
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				res, err := scenario(trimmed, r, setup, mod, opts, logger)
				if err != nil && !errors.Is(err, traveltime.ErrNoSensorData) {
					return errors.Wrapf(err, "path %d", i)
				}
				outcomes[i*len(mods)+j] = Outcome{
					PathIndex:    i,
					Nodes:        r.nodes,
					Length:       r.length,
					TravelTime:   res.Seconds,
					MissingData:  res.MissingData,
					Modification: mod,
				}
				observer.Tick(StepScenario, 1)

				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	observer.StepFinished(StepScenario, len(outcomes))

	return outcomes, nil
}

func resolveRoutes(g *graph.Graph, setup Setup, opts Options, observer progress.Observer) ([]route, error) {
	index := spatial.NodeIndex(g)

	observer.StepStarted(StepResolve, len(setup.Paths))
	waypoints := make([][]graph.NodeID, len(setup.Paths))
	for i, queries := range setup.Paths {
		nodes, missed := traversal.ResolveWaypoints(g, index, queries)
		if len(missed) > 0 {
			return nil, errors.Wrapf(traversal.ErrWaypointNotFound, "path %d waypoints %v", i, missed)
		}
		waypoints[i] = nodes
		observer.Tick(StepResolve, 1)
	}
	observer.StepFinished(StepResolve, len(waypoints))

	observer.StepStarted(StepRoute, len(waypoints))
	routes := make([]route, len(waypoints))
	for i, wps := range waypoints {
		p, err := traversal.ShortestPath(g, wps, setup.Metric, traversal.WithDefaultSpeed(opts.DefaultSpeedKmh))
		if err != nil {
			return nil, errors.Wrapf(err, "route path %d", i)
		}
		if !p.Complete {
			return nil, errors.Wrapf(traversal.ErrNoPath, "path %d misses %v", i, p.Missed)
		}
		length, err := traversal.PathDistance(g, p.Nodes)
		if err != nil {
			return nil, err
		}
		routes[i] = route{nodes: p.Nodes, length: length}
		observer.Tick(StepRoute, 1)
	}
	observer.StepFinished(StepRoute, len(routes))

	return routes, nil
}

func checkSites(g *graph.Graph, routes []route, sites []int32, ignoreMissing bool, logger *slog.Logger) error {
	var onPath []int32
	for _, r := range routes {
		for _, n := range r.nodes {
			if node := g.NodeMut(n); node.HasSensor() {
				onPath = append(onPath, node.Sensor.SiteID)
			}
		}
	}

	for _, site := range sites {
		if slices.Contains(onPath, site) {
			continue
		}
		if !ignoreMissing {
			return errors.Wrapf(ErrSensorNotOnPath, "site %d (sites on paths: %v)", site, onPath)
		}
		logger.Warn("Sensor not found on any path", "site_id", site)
	}

	return nil
}

func scenario(pg *graph.ProcessedGraph, r route, setup Setup, mod Modification, opts Options, logger *slog.Logger) (traveltime.Result, error) {
	g := pg.Graph.Clone()
	for _, n := range r.nodes {
		node := g.NodeMut(n)
		if !node.HasSensor() || !slices.Contains(setup.Sites, node.Sensor.SiteID) {
			continue
		}

		orig := *node.Sensor
		fake := mod.Apply(orig)
		node.Sensor = &fake

		logger.Debug("Modified sensor",
			"site_id", orig.SiteID,
			"speed", orig.AverageSpeed,
			"modified_speed", fake.AverageSpeed,
			"injected_vehicles", injectedVehicles(orig, fake, setup.FakeDataSpeed))
	}

	view := &graph.ProcessedGraph{Graph: g, Sensors: pg.Sensors}

	return traveltime.Estimate(view, r.nodes, traveltime.StaticReadings(view), traveltime.Options{NominalSpeedKmh: opts.NominalSpeedKmh})
}

// injectedVehicles is how many vehicles at fakeSpeed would shift the
// mean speed of orig to that of fake.
func injectedVehicles(orig, fake entity.SensorSample, fakeSpeed float64) float64 {
	denom := fakeSpeed - fake.AverageSpeed
	if denom == 0 {
		return math.Inf(1)
	}

	return orig.FlowRate * (fake.AverageSpeed - orig.AverageSpeed) / denom
}

// WriteCSV writes outcomes with the header
// path_index,length,travel_time,modification_value,modification_mode.
func WriteCSV(w io.Writer, outcomes []Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path_index", "length", "travel_time", "modification_value", "modification_mode"}); err != nil {
		return errors.WithStack(err)
	}
	for _, o := range outcomes {
		record := []string{
			strconv.Itoa(o.PathIndex),
			strconv.FormatFloat(o.Length, 'f', -1, 64),
			strconv.FormatFloat(o.TravelTime, 'f', -1, 64),
			strconv.FormatFloat(o.Modification.Value, 'f', -1, 64),
			string(o.Modification.Kind),
		}
		if err := cw.Write(record); err != nil {
			return errors.WithStack(err)
		}
	}
	cw.Flush()

	return errors.WithStack(cw.Error())
}
