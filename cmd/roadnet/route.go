package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"roadnet/config"
	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/routing/traversal"
	"roadnet/internal/usecase"

	"github.com/pkg/errors"
)

type routeFlags struct {
	graph         string
	waypoints     string
	waypointsFile string
	metric        string
	output        string
}

func (f *routeFlags) register(cmd *flag.FlagSet) {
	cmd.StringVar(&f.graph, "graph", "data/graph.bin.zst", "Processed graph file")
	cmd.StringVar(&f.waypoints, "waypoints", "", "Waypoints as lat,lon[,radius] separated by ';'")
	cmd.StringVar(&f.waypointsFile, "waypoints-file", "", "JSON file with an array of point queries")
	cmd.StringVar(&f.metric, "metric", "space", "Cost metric (space or time)")
	cmd.StringVar(&f.output, "output", "", "Output file; stdout when empty")
}

func (f *routeFlags) request() (usecase.RouteRequest, error) {
	metric, err := traversal.ParseMetric(f.metric)
	if err != nil {
		return usecase.RouteRequest{}, err
	}

	waypoints, err := waypointsFromFlags(f.waypoints, f.waypointsFile)
	if err != nil {
		return usecase.RouteRequest{}, err
	}
	if len(waypoints) < 2 {
		return usecase.RouteRequest{}, errors.New("at least two waypoints are required")
	}

	return usecase.RouteRequest{Waypoints: waypoints, Metric: metric}, nil
}

func handleRoute(ctx context.Context, args []string) error {
	var f routeFlags
	cmd := flag.NewFlagSet("route", flag.ExitOnError)
	f.register(cmd)
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse route flags")
	}

	req, err := f.request()
	if err != nil {
		return err
	}

	cfg := loadConfig()
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	router, err := newRouter(cfg, logger, f.graph, nil)
	if err != nil {
		return err
	}

	result, err := router.Route(ctx, req)
	if err != nil {
		return err
	}

	out, err := output(f.output)
	if err != nil {
		return err
	}
	defer out.Close()

	return writeJSON(out, result)
}

type travelTimeFlags struct {
	routeFlags
	live    bool
	at      string
	maxAge  time.Duration
	vehicle string
}

func (f *travelTimeFlags) register(cmd *flag.FlagSet) {
	f.routeFlags.register(cmd)
	cmd.BoolVar(&f.live, "live", false, "Read sensor data from the store instead of the graph")
	cmd.StringVar(&f.at, "at", "", "Moment of interest for live data (RFC 3339); now when empty")
	cmd.DurationVar(&f.maxAge, "max-age", 0, "Maximum age of live readings; the configured default when zero")
	cmd.StringVar(&f.vehicle, "vehicle", "", "Only use sensors of this vehicle type")
}

func (f *travelTimeFlags) request() (usecase.TravelTimeRequest, error) {
	route, err := f.routeFlags.request()
	if err != nil {
		return usecase.TravelTimeRequest{}, err
	}

	req := usecase.TravelTimeRequest{
		RouteRequest:  route,
		Live:          f.live,
		MaxAgeSeconds: int(f.maxAge / time.Second),
		VehicleType:   entity.VehicleType(f.vehicle),
	}
	if f.at != "" {
		if req.At, err = time.Parse(time.RFC3339, f.at); err != nil {
			return usecase.TravelTimeRequest{}, errors.Wrap(err, "parse -at")
		}
	}
	if req.VehicleType != "" && !req.VehicleType.IsKnown() {
		return usecase.TravelTimeRequest{}, errors.Errorf("unknown vehicle type %q", f.vehicle)
	}

	return req, nil
}

func handleTravelTime(ctx context.Context, args []string) error {
	var f travelTimeFlags
	cmd := flag.NewFlagSet("travel-time", flag.ExitOnError)
	f.register(cmd)
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse travel-time flags")
	}

	req, err := f.request()
	if err != nil {
		return err
	}

	cfg := loadConfig()
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	router, closeStore, err := liveRouter(ctx, cfg, logger, f.graph, f.live)
	if err != nil {
		return err
	}
	defer closeStore()

	result, err := router.TravelTime(ctx, req)
	if err != nil {
		return err
	}

	out, err := output(f.output)
	if err != nil {
		return err
	}
	defer out.Close()

	return writeJSON(out, result)
}

type liveRouteFlags struct {
	travelTimeFlags
	step  time.Duration
	steps int
}

func handleLiveRoute(ctx context.Context, args []string) error {
	var f liveRouteFlags
	cmd := flag.NewFlagSet("live-route", flag.ExitOnError)
	f.travelTimeFlags.register(cmd)
	cmd.DurationVar(&f.step, "step", 5*time.Minute, "Time between estimates")
	cmd.IntVar(&f.steps, "steps", 288, "Number of estimates")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse live-route flags")
	}

	if f.at == "" {
		return errors.New("--at flag is required for live-route command")
	}
	if f.step <= 0 || f.steps <= 0 {
		return errors.New("--step and --steps must be positive")
	}
	f.live = true

	req, err := f.request()
	if err != nil {
		return err
	}

	cfg := loadConfig()
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	router, closeStore, err := liveRouter(ctx, cfg, logger, f.graph, true)
	if err != nil {
		return err
	}
	defer closeStore()

	out, err := output(f.output)
	if err != nil {
		return err
	}
	defer out.Close()

	return runLiveRoute(ctx, router, req, f.step, f.steps, csv.NewWriter(out))
}

// runLiveRoute writes the travel time at req.At + i*step for every i below
// steps. Moments without sensor data on the route keep their nominal estimate.
func runLiveRoute(ctx context.Context, router usecase.RouteUsecase, req usecase.TravelTimeRequest, step time.Duration, steps int, w *csv.Writer) error {
	if err := w.Write([]string{"time", "travelTimeSensors"}); err != nil {
		return errors.WithStack(err)
	}

	start := req.At
	for i := range steps {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}

		req.At = start.Add(time.Duration(i) * step)
		result, err := router.TravelTime(ctx, req)
		if err != nil {
			return errors.Wrapf(err, "travel time at %s", req.At.Format(time.RFC3339))
		}

		record := []string{req.At.Format(time.RFC3339), strconv.FormatFloat(result.Seconds, 'f', 3, 64)}
		if err := w.Write(record); err != nil {
			return errors.WithStack(err)
		}
	}
	w.Flush()

	return errors.WithStack(w.Error())
}

func handleReachable(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("reachable", flag.ExitOnError)
	graphPath := cmd.String("graph", "data/graph.bin.zst", "Processed graph file")
	from := cmd.String("from", "", "Start point as lat,lon[,radius]")
	maxCost := cmd.Float64("max-cost", 0, "Cost budget in the metric's unit")
	metricName := cmd.String("metric", "space", "Cost metric (space or time)")
	outputPath := cmd.String("output", "", "Output file; stdout when empty")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse reachable flags")
	}

	if *from == "" {
		return errors.New("--from flag is required for reachable command")
	}
	if *maxCost <= 0 {
		return errors.New("--max-cost must be positive")
	}

	q, err := parsePointQuery(*from)
	if err != nil {
		return err
	}
	metric, err := traversal.ParseMetric(*metricName)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	router, err := newRouter(cfg, logger, *graphPath, nil)
	if err != nil {
		return err
	}

	result, err := router.Reachable(ctx, usecase.ReachableRequest{From: q, MaxCost: *maxCost, Metric: metric})
	if err != nil {
		return err
	}

	out, err := output(*outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	fmt.Fprintf(cmd.Output(), "%d nodes within %g %s\n", len(result.Nodes), *maxCost, result.Unit)

	return writeJSON(out, result)
}

// liveRouter builds the routing service, with the sensor store opened when
// live data is wanted.
func liveRouter(ctx context.Context, cfg *config.Config, logger *slog.Logger, graphPath string, live bool) (usecase.RouteUsecase, func(), error) {
	if !live {
		router, err := newRouter(cfg, logger, graphPath, nil)

		return router, func() {}, err
	}

	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := closeStore(); err != nil {
			logger.Warn("Failed to close sensor store", "error", err)
		}
	}

	router, err := newRouter(cfg, logger, graphPath, repo)
	if err != nil {
		release()

		return nil, nil, err
	}

	return router, release, nil
}
