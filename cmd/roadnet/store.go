package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"roadnet/config"
	"roadnet/internal/infra/aggregate"
	"roadnet/internal/infra/persistence/mongostore"
	"roadnet/internal/infra/roads"

	"github.com/pkg/errors"
)

func handleAggregate(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("aggregate", flag.ExitOnError)
	input := cmd.String("input", "", "Raw feed file, one JSON record per line; the mongo raw collection when empty")
	quiet := cmd.Bool("quiet", false, "Log steps instead of drawing progress bars")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse aggregate flags")
	}

	cfg := loadConfig()
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("Failed to close sensor store", "error", err)
		}
	}()

	var (
		src   aggregate.RawSource
		total int
	)
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			return errors.WithStack(err)
		}
		defer f.Close()
		src = roads.NewRawFeedFile(f)
	} else {
		if cfg.Store == nil {
			return errors.New("--input is required without a mongo store")
		}
		db, disconnect, err := openMongo(ctx, cfg.Store.Mongo)
		if err != nil {
			return err
		}
		defer disconnect()

		feed := mongostore.NewRawFeed(db, cfg.Store.Mongo)
		count, err := feed.Count(ctx)
		if err != nil {
			return err
		}
		src, total = feed, int(count)
	}

	aggregator := aggregate.New(repo, aggregateOptions(cfg.Aggregate), logger, nil, newObserver(*quiet, logger))
	stats, err := aggregator.Run(ctx, src, total)
	if err != nil {
		return errors.Wrap(err, "aggregate sensor data")
	}

	fmt.Printf("Read %d records, skipped %d, wrote %d data points\n", stats.Read, stats.Skipped, stats.Written)

	return nil
}

func aggregateOptions(cfg *config.AggregateConfig) aggregate.Options {
	if cfg == nil {
		return aggregate.Options{}
	}

	return aggregate.Options{
		Workers:     cfg.Workers,
		BatchSize:   cfg.BatchSize,
		QueueSize:   cfg.QueueSize,
		MaxInFlight: cfg.MaxInFlight,
	}
}

// Gap is a stretch of time without any stored reading.
type Gap struct {
	From time.Time
	To   time.Time
}

func handleFindGaps(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("find-gaps", flag.ExitOnError)
	fromFlag := cmd.String("from", "", "Start of the interval (RFC 3339)")
	toFlag := cmd.String("to", "", "End of the interval (RFC 3339); now when empty")
	minGap := cmd.Duration("min-gap", 10*time.Minute, "Shortest hole worth reporting")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse find-gaps flags")
	}

	if *fromFlag == "" {
		return errors.New("--from flag is required for find-gaps command")
	}
	from, err := time.Parse(time.RFC3339, *fromFlag)
	if err != nil {
		return errors.Wrap(err, "parse -from")
	}
	to := time.Now()
	if *toFlag != "" {
		if to, err = time.Parse(time.RFC3339, *toFlag); err != nil {
			return errors.Wrap(err, "parse -to")
		}
	}

	cfg := loadConfig()
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("Failed to close sensor store", "error", err)
		}
	}()

	times, err := repo.DataPointTimes(ctx, from, to)
	if err != nil {
		return err
	}

	gaps := findGaps(times, from, to, *minGap)
	for _, g := range gaps {
		fmt.Printf("%s\t%s\t%v\n", g.From.Format(time.RFC3339), g.To.Format(time.RFC3339), g.To.Sub(g.From))
	}
	fmt.Fprintf(os.Stderr, "%d readings, %d gaps of at least %v\n", len(times), len(gaps), *minGap)

	return nil
}

// findGaps returns the holes of at least minGap between consecutive
// timestamps, including the stretches before the first and after the last.
// times must be ascending.
func findGaps(times []time.Time, from, to time.Time, minGap time.Duration) []Gap {
	var gaps []Gap
	prev := from
	for _, t := range times {
		if t.Sub(prev) >= minGap {
			gaps = append(gaps, Gap{From: prev, To: t})
		}
		prev = t
	}
	if to.Sub(prev) >= minGap {
		gaps = append(gaps, Gap{From: prev, To: to})
	}

	return gaps
}
