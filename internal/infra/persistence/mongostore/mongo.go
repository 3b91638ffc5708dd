// Package mongostore keeps sensor channels and readings in MongoDB, in the
// collections the traffic feed importer writes.
package mongostore

import (
	"context"
	"log/slog"
	"time"

	"roadnet/config"
	"roadnet/internal/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultDatabase       = "exjobb"
	defaultSensors        = "sensors"
	defaultDataPoints     = "sensordata"
	defaultRaw            = "trafikverketflowentries_v2"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New connects to MongoDB and disconnects with the application.
func New(params Params) (*mongo.Database, error) {
	var cfg config.MongoConfig
	if params.Config.Store != nil {
		cfg = params.Config.Store.Mongo
	}

	client, err := Connect(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				return errors.Wrap(err, "failed to ping MongoDB")
			}
			params.Logger.Info("Connected to MongoDB", "database", DatabaseName(cfg))

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})

	return client.Database(DatabaseName(cfg)), nil
}

// Connect creates a client for cfg outside the fx graph.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create MongoDB client")
	}

	return client, nil
}

// DatabaseName is the configured database, or the default one.
func DatabaseName(cfg config.MongoConfig) string {
	return or(cfg.Database, defaultDatabase)
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}

	return v
}
