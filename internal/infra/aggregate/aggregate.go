// Package aggregate turns the raw traffic feed into registered sensor
// channels and stored readings.
//
// Records flow through a bounded worker pool that resolves each record's
// sensor id, then through a bounded channel into a single writer that
// stores readings in batches. A failed batch is logged and dropped; the
// run continues.
package aggregate

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"roadnet/internal/domain/entity"
	"roadnet/internal/domain/repository"
	"roadnet/internal/errors"
	"roadnet/internal/infra/metrics"
	"roadnet/internal/infra/progress"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// StepAggregate is the step name reported to the observer.
const StepAggregate = "aggregate"

const (
	defaultBatchSize   = 1000
	defaultQueueSize   = 4096
	defaultMaxInFlight = 16
)

// RawSource streams raw feed records.
type RawSource interface {
	Stream(ctx context.Context, fn func(entity.RawSensorReading) error) error
}

// Options bounds the pipeline. Zero values take defaults.
type Options struct {
	Workers     int `validate:"gte=0"`
	BatchSize   int `validate:"gte=0"`
	QueueSize   int `validate:"gte=0"`
	MaxInFlight int `validate:"gte=0"`
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.QueueSize <= 0 {
		o.QueueSize = defaultQueueSize
	}
	if o.MaxInFlight <= 0 {
		o.MaxInFlight = defaultMaxInFlight
	}

	return o
}

// Stats counts what a run did.
type Stats struct {
	Read          int64 `json:"read"`
	Skipped       int64 `json:"skipped"`
	Written       int64 `json:"written"`
	Batches       int64 `json:"batches"`
	FailedBatches int64 `json:"failed_batches"`
	Sensors       int64 `json:"sensors"`
}

// Aggregator runs the pipeline against a sensor repository.
type Aggregator struct {
	repo     repository.SensorRepository
	opts     Options
	logger   *slog.Logger
	metrics  *metrics.Metrics
	observer progress.Observer

	inFlight *semaphore.Weighted
	mu       sync.RWMutex
	ids      map[entity.SensorKey]string
}

// New creates an Aggregator. metrics and observer may be nil.
func New(repo repository.SensorRepository, opts Options, logger *slog.Logger, m *metrics.Metrics, observer progress.Observer) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()

	return &Aggregator{
		repo:     repo,
		opts:     opts,
		logger:   logger,
		metrics:  m,
		observer: progress.OrNoop(observer),
		inFlight: semaphore.NewWeighted(int64(opts.MaxInFlight)),
		ids:      make(map[entity.SensorKey]string),
	}
}

// Run drains src. It returns early only when src fails or ctx is done.
func (a *Aggregator) Run(ctx context.Context, src RawSource, total int) (Stats, error) {
	var stats Stats

	jobs := make(chan entity.RawSensorReading, a.opts.QueueSize)
	points := make(chan entity.DataPoint, a.opts.QueueSize)

	a.observer.StepStarted(StepAggregate, total)

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(jobs)

		return src.Stream(ctx, func(r entity.RawSensorReading) error {
			atomic.AddInt64(&stats.Read, 1)
			select {
			case jobs <- r:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	var workers sync.WaitGroup
	for range a.opts.Workers {
		workers.Add(1)
		eg.Go(func() error {
			defer workers.Done()

			return a.resolve(ctx, jobs, points, &stats)
		})
	}
	go func() {
		workers.Wait()
		close(points)
	}()

	eg.Go(func() error {
		return a.write(ctx, points, &stats)
	})

	err := eg.Wait()
	stats.Sensors = int64(a.knownSensors())
	a.observer.StepFinished(StepAggregate, int(stats.Written))

	if err != nil {
		return stats, errors.Wrap(err, "aggregate raw records")
	}

	a.logger.Info("Aggregated raw records",
		"read", stats.Read, "written", stats.Written, "skipped", stats.Skipped,
		"batches", stats.Batches, "failed_batches", stats.FailedBatches, "sensors", stats.Sensors)

	return stats, nil
}

func (a *Aggregator) resolve(ctx context.Context, jobs <-chan entity.RawSensorReading, points chan<- entity.DataPoint, stats *Stats) error {
	for r := range jobs {
		sensorID, err := a.sensorID(ctx, r)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			atomic.AddInt64(&stats.Skipped, 1)
			a.count("skipped", 1)
			a.logger.Debug("Skipped raw record", "id", r.ID, "site_id", r.SiteID, "error", err)
			a.observer.Tick(StepAggregate, 1)

			continue
		}

		p := entity.DataPoint{
			OriginalID:   r.ID,
			SensorID:     sensorID,
			Time:         r.MeasurementTime,
			FlowRate:     r.FlowRate,
			AverageSpeed: r.AverageSpeed,
		}
		select {
		case points <- p:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// sensorID returns the id of r's channel, from the cache or the repository.
func (a *Aggregator) sensorID(ctx context.Context, r entity.RawSensorReading) (string, error) {
	meta, err := r.Metadata()
	if err != nil {
		return "", err
	}
	key := meta.Key()

	a.mu.RLock()
	id, ok := a.ids[key]
	a.mu.RUnlock()
	if ok {
		return id, nil
	}

	if err := a.inFlight.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer a.inFlight.Release(1)

	found, err := a.repo.FindOrCreateSensor(ctx, meta)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.ids[key] = found.ID
	a.mu.Unlock()

	return found.ID, nil
}

func (a *Aggregator) knownSensors() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.ids)
}

// write is the only goroutine touching the repository's data points.
func (a *Aggregator) write(ctx context.Context, points <-chan entity.DataPoint, stats *Stats) error {
	batch := make([]entity.DataPoint, 0, a.opts.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		stats.Batches++
		n := len(batch)
		if err := a.repo.SaveDataPoints(ctx, batch); err != nil {
			stats.FailedBatches++
			a.countBatch("failed")
			a.count("failed", n)
			a.logger.Error("Failed to write data point batch", "size", n, "error", err)
		} else {
			atomic.AddInt64(&stats.Written, int64(n))
			a.countBatch("ok")
			a.count("written", n)
		}
		a.observer.Tick(StepAggregate, n)
		batch = batch[:0]
	}

	for p := range points {
		batch = append(batch, p)
		if len(batch) >= a.opts.BatchSize {
			flush()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	flush()

	return nil
}

func (a *Aggregator) count(outcome string, n int) {
	if a.metrics != nil {
		a.metrics.AggregateRecords.WithLabelValues(outcome).Add(float64(n))
	}
}

func (a *Aggregator) countBatch(outcome string) {
	if a.metrics != nil {
		a.metrics.AggregateBatches.WithLabelValues(outcome).Inc()
	}
}
