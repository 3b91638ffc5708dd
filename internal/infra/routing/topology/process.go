package topology

import (
	"context"
	"log/slog"

	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/progress"
	"roadnet/internal/infra/routing/graph"

	"github.com/pkg/errors"
)

// Report counts what each pass of Process changed.
type Report struct {
	RoadsIn          int     `json:"roads_in"`
	RoadsDeduped     int     `json:"roads_deduped"`
	SensorsIn        int     `json:"sensors_in"`
	NodesBuilt       int     `json:"nodes_built"`
	EdgesBuilt       int     `json:"edges_built"`
	NodesPruned      int     `json:"nodes_pruned"`
	NodesMerged      int     `json:"nodes_merged"`
	SensorNodes      int     `json:"sensor_nodes"`
	ConnectorPairs   int     `json:"connector_pairs"`
	NodesDisjoint    int     `json:"nodes_disjoint"`
	EdgesDeduped     int     `json:"edges_deduped"`
	NodesCollapsed   int     `json:"nodes_collapsed"`
	LongestEdgeM     float64 `json:"longest_edge_m"`
	FinalNodes       int     `json:"final_nodes"`
	FinalEdges       int     `json:"final_edges"`
	FinalConnectors  int     `json:"final_connectors"`
	FinalSensorNodes int     `json:"final_sensor_nodes"`
}

// Processor runs the build and simplification pipeline.
type Processor struct {
	opts     Options
	observer progress.Observer
	logger   *slog.Logger
}

// NewProcessor validates opts and returns a Processor. A nil observer or
// logger is replaced by a no-op observer and slog.Default().
func NewProcessor(opts Options, observer progress.Observer, logger *slog.Logger) (*Processor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Processor{opts: opts, observer: progress.OrNoop(observer), logger: logger}, nil
}

// Process is a shorthand for NewProcessor followed by Run.
func Process(ctx context.Context, roads []entity.RoadSegment, sensors []entity.SensorSample, opts Options, observer progress.Observer) (*graph.ProcessedGraph, Report, error) {
	p, err := NewProcessor(opts, observer, nil)
	if err != nil {
		return nil, Report{}, err
	}

	return p.Run(ctx, roads, sensors)
}

// step runs fn between StepStarted and StepFinished, after checking ctx.
func (p *Processor) step(ctx context.Context, name string, total int, fn func() (int, error)) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "before %s", name)
	}

	p.observer.StepStarted(name, total)
	affected, err := fn()
	p.observer.StepFinished(name, affected)
	if err != nil {
		return errors.Wrap(err, name)
	}

	return nil
}

// Run builds the graph from roads and applies every enabled pass in order:
// road dedup, build, sensor-distance prune, overlap merge, sensor assignment,
// disjoint connection, disjoint removal, edge dedup and collapse. The context
// is only checked between passes.
func (p *Processor) Run(ctx context.Context, roads []entity.RoadSegment, sensors []entity.SensorSample) (*graph.ProcessedGraph, Report, error) {
	opts := p.opts
	workers := opts.workers()
	report := Report{RoadsIn: len(roads), SensorsIn: len(sensors)}

	if opts.DedupRoads {
		err := p.step(ctx, StepDedupRoads, len(roads), func() (int, error) {
			kept, removed, err := DedupRoads(roads)
			if err != nil {
				return 0, err
			}
			roads = kept
			report.RoadsDeduped = removed

			return removed, nil
		})
		if err != nil {
			return nil, report, err
		}
	}

	var g *graph.Graph
	if err := p.step(ctx, StepBuild, len(roads), func() (int, error) {
		g = Build(roads)
		report.NodesBuilt, report.EdgesBuilt = g.NodeCount(), g.EdgeCount()

		return g.NodeCount(), nil
	}); err != nil {
		return nil, report, err
	}
	p.logger.Info("Built road graph", "roads", len(roads), "nodes", report.NodesBuilt, "edges", report.EdgesBuilt)

	pg := graph.NewProcessed(g)

	if opts.MaxDistanceFromSensors > 0 {
		err := p.step(ctx, StepPrune, g.NodeCount(), func() (int, error) {
			n, err := PruneBySensorDistance(g, sensors, opts.MaxDistanceFromSensors, workers, p.observer)
			report.NodesPruned = n

			return n, err
		})
		if err != nil {
			return nil, report, err
		}
		p.logger.Info("Pruned nodes far from sensors", "removed", report.NodesPruned)
	}

	if opts.MergeOverlap {
		if err := p.step(ctx, StepMergeOverlap, g.NodeCount(), func() (int, error) {
			report.NodesMerged = MergeOverlap(g, opts.MergeOverlapDistance, p.observer)

			return report.NodesMerged, nil
		}); err != nil {
			return nil, report, err
		}
		p.logger.Info("Merged overlapping nodes", "removed", report.NodesMerged)
	}

	if opts.AssignSensors {
		if err := p.step(ctx, StepAssignSensors, len(sensors), func() (int, error) {
			report.SensorNodes = AssignSensors(pg, sensors, opts.SensorMode, workers, p.observer)

			return report.SensorNodes, nil
		}); err != nil {
			return nil, report, err
		}
		p.logger.Info("Assigned sensors", "sensors", len(sensors), "nodes", report.SensorNodes)
	}

	for _, id := range g.EdgeIDs() {
		report.LongestEdgeM = max(report.LongestEdgeM, g.EdgeMut(id).Distance)
	}

	if opts.ConnectDisjoint {
		if err := p.step(ctx, StepConnect, g.NodeCount(), func() (int, error) {
			report.ConnectorPairs = ConnectDisjoint(g, opts.ConnectDistance, workers, p.observer)

			return report.ConnectorPairs, nil
		}); err != nil {
			return nil, report, err
		}
		p.logger.Info("Connected disjoint roads", "pairs", report.ConnectorPairs, "longestEdgeM", report.LongestEdgeM)
	}

	if opts.RemoveDisjoint {
		if err := p.step(ctx, StepRemoveDisjoint, g.NodeCount(), func() (int, error) {
			n, err := RemoveDisjoint(pg, p.observer)
			report.NodesDisjoint = n

			return n, err
		}); err != nil {
			return nil, report, err
		}
		p.logger.Info("Removed disjoint nodes", "removed", report.NodesDisjoint)
	}

	if opts.DedupEdges {
		if err := p.step(ctx, StepDedupEdges, g.EdgeCount(), func() (int, error) {
			report.EdgesDeduped = DedupEdges(g, p.observer)

			return report.EdgesDeduped, nil
		}); err != nil {
			return nil, report, err
		}
		p.logger.Info("Removed duplicate edges", "removed", report.EdgesDeduped)
	}

	if opts.Collapse != "" && opts.Collapse != CollapseNone {
		if err := p.step(ctx, StepCollapse, g.NodeCount(), func() (int, error) {
			report.NodesCollapsed = Collapse(g, opts.Collapse, p.observer)

			return report.NodesCollapsed, nil
		}); err != nil {
			return nil, report, err
		}
		p.logger.Info("Collapsed pass-through nodes", "strategy", opts.Collapse, "removed", report.NodesCollapsed)
	}

	refreshCaps(g)

	stats := pg.Stats()
	report.FinalNodes = stats.Nodes
	report.FinalEdges = stats.Edges
	report.FinalConnectors = stats.Connectors
	report.FinalSensorNodes = stats.SensorNodes

	return pg, report, nil
}
