package impl

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"roadnet/config"
	deliverycontext "roadnet/internal/delivery/context"
	domainerrors "roadnet/internal/domain/errors"
	"roadnet/internal/domain/repository"
	"roadnet/internal/errors"
	"roadnet/internal/infra/metrics"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/spatial"
	"roadnet/internal/infra/routing/traveltime"
	"roadnet/internal/infra/routing/traversal"
	"roadnet/internal/usecase"

	"go.uber.org/fx"
)

const (
	// fallback defaults to keep routing functional when config is missing/invalid
	defaultSpeedKmh        = 50.0
	defaultNominalSpeedKmh = 70.0
)

// routingService implements the RouteUsecase interface over one loaded graph
type routingService struct {
	cfg     config.RoutingConfig
	repo    repository.SensorRepository
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu    sync.RWMutex
	graph *graph.ProcessedGraph
	index *spatial.KDTree[graph.NodeID]
}

// RoutingServiceParams holds dependencies for the routing service, injected by Fx.
type RoutingServiceParams struct {
	fx.In

	Config    *config.Config
	Logger    *slog.Logger
	Lifecycle fx.Lifecycle                `optional:"true"`
	Repo      repository.SensorRepository `optional:"true"`
	Metrics   *metrics.Metrics            `optional:"true"`
}

// NewRoutingService creates the routing service. When the config names a
// graph file it is loaded in the background once the application starts.
func NewRoutingService(params RoutingServiceParams) usecase.RouteUsecase {
	s := newRoutingService(params)

	if params.Lifecycle != nil && s.cfg.GraphPath != "" {
		params.Lifecycle.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go s.load(s.cfg.GraphPath)

				return nil
			},
		})
	}

	return s
}

// NewRoutingServiceFromGraph creates a routing service serving pg.
func NewRoutingServiceFromGraph(params RoutingServiceParams, pg *graph.ProcessedGraph) usecase.RouteUsecase {
	s := newRoutingService(params)
	s.setGraph(pg)

	return s
}

func newRoutingService(params RoutingServiceParams) *routingService {
	var cfg config.RoutingConfig
	if params.Config != nil && params.Config.Routing != nil {
		cfg = *params.Config.Routing
	}
	if cfg.DefaultSpeedKmh <= 0 {
		cfg.DefaultSpeedKmh = defaultSpeedKmh
	}
	if cfg.NominalSpeedKmh <= 0 {
		cfg.NominalSpeedKmh = defaultNominalSpeedKmh
	}

	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &routingService{
		cfg:     cfg,
		repo:    params.Repo,
		metrics: params.Metrics,
		logger:  logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (s *routingService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

func (s *routingService) load(path string) {
	start := time.Now()
	pg, err := graph.ReadFile(path)
	if err != nil {
		s.logger.Error("failed to load road graph", slog.String("path", path), slog.Any("error", err))

		return
	}
	s.setGraph(pg)

	s.logger.Info("road graph loaded",
		slog.String("path", path),
		slog.Int("nodes", pg.Graph.NodeCount()),
		slog.Int("edges", pg.Graph.EdgeCount()),
		slog.Duration("took", time.Since(start)),
	)
}

func (s *routingService) setGraph(pg *graph.ProcessedGraph) {
	index := spatial.NodeIndex(pg.Graph)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = pg
	s.index = index
}

func (s *routingService) snapshot() (*graph.ProcessedGraph, *spatial.KDTree[graph.NodeID], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.graph == nil {
		return nil, nil, domainerrors.ErrGraphNotLoaded
	}

	return s.graph, s.index, nil
}

// IsReady returns whether a graph is loaded
func (s *routingService) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.graph != nil
}

// withSnapRadius fills in the configured snap radius for unbounded queries.
func (s *routingService) withSnapRadius(q traversal.PointQuery) traversal.PointQuery {
	if math.IsNaN(q.Radius) && s.cfg.MaxSnapDistanceM > 0 {
		q.Radius = s.cfg.MaxSnapDistanceM
	}

	return q
}

func (s *routingService) searchOptions() []traversal.Option {
	return []traversal.Option{traversal.WithDefaultSpeed(s.cfg.DefaultSpeedKmh)}
}

func (s *routingService) observe(metric traversal.Metric, start time.Time, err error) {
	if s.metrics == nil {
		return
	}

	outcome := "ok"
	var appErr domainerrors.AppError
	switch {
	case err == nil:
	case errors.As(err, &appErr):
		outcome = strings.ToLower(appErr.ErrorCode())
	default:
		outcome = "error"
	}

	s.metrics.RouteQueries.WithLabelValues(metric.String(), outcome).Inc()
	s.metrics.RouteDuration.Observe(time.Since(start).Seconds())
}

// Route finds the cheapest route through the request's waypoints
func (s *routingService) Route(ctx context.Context, req usecase.RouteRequest) (*usecase.RouteResult, error) {
	start := time.Now()
	res, err := s.route(ctx, req)
	s.observe(req.Metric, start, err)

	return res, err
}

func (s *routingService) route(ctx context.Context, req usecase.RouteRequest) (*usecase.RouteResult, error) {
	pg, index, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if len(req.Waypoints) < 2 {
		return nil, domainerrors.ErrInvalidQuery.WithDetails("at least two waypoints are required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	queries := make([]traversal.PointQuery, len(req.Waypoints))
	for i, q := range req.Waypoints {
		queries[i] = s.withSnapRadius(q)
	}

	nodes, unresolved := traversal.ResolveWaypoints(pg.Graph, index, queries)
	if len(nodes) < 2 {
		return nil, domainerrors.ErrWaypointNotFound.WithDetails(fmt.Sprintf("unresolved waypoints %v", unresolved))
	}

	path, err := traversal.ShortestPath(pg.Graph, nodes, req.Metric, s.searchOptions()...)
	if err != nil {
		return nil, errors.Wrap(err, "shortest path")
	}
	if len(path.Nodes) < 2 && !path.Complete {
		return nil, domainerrors.ErrNoPath.WithDetails(fmt.Sprintf("unreached nodes %v", path.Missed))
	}

	distance, err := traversal.PathDistance(pg.Graph, path.Nodes)
	if err != nil {
		return nil, errors.Wrap(err, "path distance")
	}

	geometry := graph.PathGeoJSON(pg.Graph, path.Nodes, map[string]any{
		"metric": req.Metric.String(),
		"cost":   path.Length,
		"unit":   req.Metric.Unit(),
	})

	if len(unresolved) > 0 || !path.Complete {
		s.log(ctx).Debug("partial route",
			slog.Any("unresolved", unresolved),
			slog.Any("unreached", path.Missed),
		)
	}

	return &usecase.RouteResult{
		Metric:     req.Metric,
		Cost:       path.Length,
		Unit:       req.Metric.Unit(),
		DistanceM:  distance,
		Nodes:      path.Nodes,
		Complete:   path.Complete && len(unresolved) == 0,
		Unresolved: unresolved,
		Unreached:  path.Missed,
		Polyline:   geometry.Properties.MustString("polyline", ""),
		Geometry:   geometry,
	}, nil
}

// TravelTime routes and estimates how long the route takes to drive
func (s *routingService) TravelTime(ctx context.Context, req usecase.TravelTimeRequest) (*usecase.TravelTimeResult, error) {
	start := time.Now()
	res, err := s.travelTime(ctx, req)
	s.observe(req.Metric, start, err)

	return res, err
}

func (s *routingService) travelTime(ctx context.Context, req usecase.TravelTimeRequest) (*usecase.TravelTimeResult, error) {
	if req.Live && s.repo == nil {
		return nil, domainerrors.ErrSensorStoreUnavailable
	}

	route, err := s.route(ctx, req.RouteRequest)
	if err != nil {
		return nil, err
	}

	pg, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	opts := traveltime.Options{NominalSpeedKmh: s.cfg.NominalSpeedKmh, VehicleType: req.VehicleType}

	var est traveltime.Result
	if req.Live {
		maxAge := s.cfg.MaxDataAge
		if req.MaxAgeSeconds > 0 {
			maxAge = time.Duration(req.MaxAgeSeconds) * time.Second
		}
		est, err = traveltime.Live(ctx, s.repo, pg, route.Nodes, traveltime.Filter{At: req.At, MaxAge: maxAge}, opts)
	} else {
		est, err = traveltime.Estimate(pg, route.Nodes, traveltime.StaticReadings(pg), opts)
	}

	switch {
	case err == nil:
	case errors.Is(err, traveltime.ErrNoSensorData):
		s.log(ctx).Debug("no sensor data on route, using nominal speed",
			slog.Float64("nominal_speed_kmh", opts.NominalSpeedKmh),
		)
	case req.Live:
		return nil, domainerrors.NewStoreError(err, "reading live sensor data")
	default:
		return nil, errors.Wrap(err, "estimate travel time")
	}

	res := &usecase.TravelTimeResult{
		Route:       route,
		Seconds:     est.Seconds,
		MissingData: est.MissingData,
		Samples:     est.Samples,
	}

	limits, err := traveltime.FromSpeedLimits(pg.Graph, route.Nodes, s.cfg.DefaultSpeedKmh)
	if err != nil {
		return nil, errors.Wrap(err, "speed limit travel time")
	}
	if !math.IsInf(limits, 0) {
		res.SpeedLimitSeconds = &limits
	}

	return res, nil
}

// ResolveWaypoints snaps each query to a graph node
func (s *routingService) ResolveWaypoints(ctx context.Context, queries []traversal.PointQuery) ([]usecase.ResolvedWaypoint, error) {
	pg, index, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	out := make([]usecase.ResolvedWaypoint, len(queries))
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		out[i] = usecase.ResolvedWaypoint{Index: i, Node: graph.NoNode}
		id, err := traversal.ResolveWaypoint(pg.Graph, index, s.withSnapRadius(q))
		if err != nil {
			continue
		}

		p := pg.Graph.NodeMut(id).Point
		out[i].Found = true
		out[i].Node = id
		out[i].Point = &p
		out[i].DistanceM = spatial.Geodesic(q.Point, p)
	}

	return out, nil
}

// Reachable lists the nodes within a cost budget of a waypoint
func (s *routingService) Reachable(ctx context.Context, req usecase.ReachableRequest) (*usecase.ReachableResult, error) {
	pg, index, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if req.MaxCost <= 0 || math.IsNaN(req.MaxCost) {
		return nil, domainerrors.ErrInvalidQuery.WithDetails("max_cost must be positive")
	}

	start, err := traversal.ResolveWaypoint(pg.Graph, index, s.withSnapRadius(req.From))
	if err != nil {
		return nil, domainerrors.ErrWaypointNotFound.WithDetails(err.Error())
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	costs, err := traversal.Reachable(pg.Graph, start, req.MaxCost, req.Metric, s.searchOptions()...)
	if err != nil {
		return nil, errors.Wrap(err, "reachable")
	}

	nodes := make([]usecase.ReachableNode, 0, len(costs))
	for id, cost := range costs {
		nodes = append(nodes, usecase.ReachableNode{Node: id, Point: pg.Graph.NodeMut(id).Point, Cost: cost})
	}
	slices.SortFunc(nodes, func(a, b usecase.ReachableNode) int {
		if c := cmp.Compare(a.Cost, b.Cost); c != 0 {
			return c
		}

		return cmp.Compare(a.Node, b.Node)
	})

	return &usecase.ReachableResult{
		Start:  start,
		Metric: req.Metric,
		Unit:   req.Metric.Unit(),
		Nodes:  nodes,
	}, nil
}

// GraphStats summarises the loaded graph
func (s *routingService) GraphStats(context.Context) (graph.Stats, error) {
	pg, _, err := s.snapshot()
	if err != nil {
		return graph.Stats{}, err
	}

	return pg.Stats(), nil
}
