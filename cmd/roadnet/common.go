package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"roadnet/config"
	"roadnet/internal/domain/entity"
	"roadnet/internal/domain/repository"
	logs "roadnet/internal/infra/log"
	"roadnet/internal/infra/persistence/badgerstore"
	"roadnet/internal/infra/persistence/mongostore"
	"roadnet/internal/infra/progress"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/traversal"
	"roadnet/internal/usecase"
	"roadnet/internal/usecase/impl"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	storeBadger = "badger"
	storeMongo  = "mongo"
)

// loadConfig reads config.yaml when one is found and falls back to the
// built-in defaults otherwise.
func loadConfig() *config.Config {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: using default configuration: %v\n", err)

		return &config.Config{}
	}

	return cfg
}

// newLogger logs to stderr so that command output on stdout stays clean.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logs.NewFromLog(cfg.Env.Log, os.Stderr)
}

// newObserver shows progress bars, or step log lines when quiet.
func newObserver(quiet bool, logger *slog.Logger) progress.Observer {
	if quiet {
		return progress.NewLogger(logger)
	}

	return progress.NewConsole(os.Stderr)
}

// openStore opens the sensor store selected by the config. The returned
// func releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.SensorRepository, func() error, error) {
	if cfg.Store == nil {
		return nil, nil, errors.New("no sensor store configured")
	}

	switch strings.ToLower(cfg.Store.Driver) {
	case storeBadger, "":
		db, err := badgerstore.Open(cfg.Store.Badger, logger)
		if err != nil {
			return nil, nil, err
		}

		return badgerstore.NewSensorRepository(db), db.Close, nil
	case storeMongo:
		db, disconnect, err := openMongo(ctx, cfg.Store.Mongo)
		if err != nil {
			return nil, nil, err
		}

		return mongostore.NewSensorRepository(db, cfg.Store.Mongo), disconnect, nil
	default:
		return nil, nil, errors.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, func() error, error) {
	client, err := mongostore.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	disconnect := func() error {
		return client.Disconnect(context.Background())
	}

	if err := mongostore.EnsureIndexes(ctx, client.Database(mongostore.DatabaseName(cfg)), cfg); err != nil {
		_ = disconnect()

		return nil, nil, err
	}

	return client.Database(mongostore.DatabaseName(cfg)), disconnect, nil
}

// newRouter wraps a loaded graph in the routing service. repo may be nil.
func newRouter(cfg *config.Config, logger *slog.Logger, graphPath string, repo repository.SensorRepository) (usecase.RouteUsecase, error) {
	if graphPath == "" {
		return nil, errors.New("-graph is required")
	}

	pg, err := graph.ReadFile(graphPath)
	if err != nil {
		return nil, errors.Wrapf(err, "load graph %s", graphPath)
	}

	params := impl.RoutingServiceParams{Config: cfg, Logger: logger}
	if repo != nil {
		params.Repo = repo
	}

	return impl.NewRoutingServiceFromGraph(params, pg), nil
}

// parseWaypoints reads "lat,lon[,radius]" points separated by semicolons.
// A point without a radius uses the configured snap radius.
func parseWaypoints(s string) ([]traversal.PointQuery, error) {
	var out []traversal.PointQuery
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		q, err := parsePointQuery(part)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}

	return out, nil
}

func parsePointQuery(s string) (traversal.PointQuery, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 2 && len(fields) != 3 {
		return traversal.PointQuery{}, errors.Errorf("waypoint %q: want lat,lon[,radius]", s)
	}

	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return traversal.PointQuery{}, errors.Wrapf(err, "waypoint %q", s)
		}
		values[i] = v
	}

	q := traversal.PointQuery{Point: entity.NewPoint(values[0], values[1]), Radius: math.NaN()}
	if len(values) == 3 {
		q.Radius = values[2]
	}
	if !q.Point.IsValid() {
		return traversal.PointQuery{}, errors.Errorf("waypoint %q is outside WGS84 bounds", s)
	}

	return q, nil
}

// readWaypointsFile decodes a JSON array of point queries.
func readWaypointsFile(path string) ([]traversal.PointQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	var out []traversal.PointQuery
	if err := json.NewDecoder(f).Decode(&out); err != nil {
		return nil, errors.Wrapf(err, "decode waypoints %s", path)
	}

	return out, nil
}

// waypointsFromFlags prefers the waypoints file over the inline list.
func waypointsFromFlags(inline, file string) ([]traversal.PointQuery, error) {
	if file != "" {
		return readWaypointsFile(file)
	}
	if inline == "" {
		return nil, errors.New("-waypoints or -waypoints-file is required")
	}

	return parseWaypoints(inline)
}

// parseBounds reads "minLon,minLat,maxLon,maxLat".
func parseBounds(s string) (*orb.Bound, error) {
	if s == "" {
		return nil, nil
	}

	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return nil, errors.Errorf("bounds %q: want minLon,minLat,maxLon,maxLat", s)
	}

	var v [4]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bounds %q", s)
		}
		v[i] = x
	}

	return &orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

// output opens path for writing, or returns stdout for "" and "-".
func output(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return errors.WithStack(enc.Encode(v))
}
