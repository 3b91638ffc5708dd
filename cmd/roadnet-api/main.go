package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"roadnet/config"
	"roadnet/internal/delivery"
	"roadnet/internal/delivery/api"
	"roadnet/internal/delivery/api/router/handler"
	"roadnet/internal/domain/repository"
	logs "roadnet/internal/infra/log"
	"roadnet/internal/infra/metrics"
	"roadnet/internal/infra/persistence/badgerstore"
	"roadnet/internal/infra/persistence/mongostore"
	"roadnet/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultMetricsNamespace = "roadnet"

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		newMetrics,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newSensorRepository,
		),
	)
}

// newMetrics creates the prometheus collectors when metrics are enabled
func newMetrics(cfg *config.Config) *metrics.Metrics {
	if cfg.Metrics == nil || !cfg.Metrics.Enabled {
		return nil // Metrics are optional
	}

	namespace := cfg.Metrics.Namespace
	if namespace == "" {
		namespace = defaultMetricsNamespace
	}

	return metrics.New(namespace)
}

type sensorRepositoryParams struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// newSensorRepository opens the store selected by the config. Live travel
// times are unavailable when none is configured.
func newSensorRepository(params sensorRepositoryParams) (repository.SensorRepository, error) {
	if params.Config.Store == nil {
		return nil, nil // The sensor store is optional
	}

	switch strings.ToLower(params.Config.Store.Driver) {
	case "badger":
		db, err := badgerstore.New(badgerstore.Params{Lifecycle: params.Lifecycle, Config: params.Config, Logger: params.Logger})
		if err != nil {
			return nil, errors.Wrap(err, "failed to open badger store")
		}

		return badgerstore.NewSensorRepository(db), nil
	case "mongo":
		db, err := mongostore.New(mongostore.Params{Lifecycle: params.Lifecycle, Config: params.Config, Logger: params.Logger})
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to mongo store")
		}

		return mongostore.NewSensorRepository(db, params.Config.Store.Mongo), nil
	case "", "none":
		return nil, nil
	default:
		return nil, errors.Errorf("unknown store driver %q", params.Config.Store.Driver)
	}
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewRoutingService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewRouteHandler,
			handler.NewHealthHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
