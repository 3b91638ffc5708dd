// Package badgerstore is the embedded sensor store: sensor channels and
// their readings kept in badger, with sensors bucketed by h3 cell.
package badgerstore

import (
	"context"
	"log/slog"
	"time"

	"roadnet/config"
	"roadnet/internal/errors"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/fx"
)

const (
	defaultGCInterval = 10 * time.Minute
	gcDiscardRatio    = 0.5
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the badger database named by the store config and closes it
// with the application.
func New(params Params) (*badger.DB, error) {
	var cfg config.BadgerConfig
	if params.Config.Store != nil {
		cfg = params.Config.Store.Badger
	}

	db, err := Open(cfg, params.Logger)
	if err != nil {
		return nil, err
	}

	gcCtx, cancelGC := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if !cfg.InMemory {
				go collectGarbage(gcCtx, params.Logger, db, cfg.GCInterval)
			}

			return nil
		},
		OnStop: func(context.Context) error {
			cancelGC()

			return db.Close()
		},
	})

	return db, nil
}

// Open opens a badger database outside the fx graph.
func Open(cfg config.BadgerConfig, logger *slog.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(newBadgerSlogLogger(logger))

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger at %q", cfg.Path)
	}

	return db, nil
}

// collectGarbage runs value log GC every interval until ctx is done.
func collectGarbage(ctx context.Context, logger *slog.Logger, db *badger.DB, interval time.Duration) {
	if interval <= 0 {
		interval = defaultGCInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				err := db.RunValueLogGC(gcDiscardRatio)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) && logger != nil {
					logger.Warn("Badger value log GC failed", "error", err)
				}

				break
			}
		}
	}
}
