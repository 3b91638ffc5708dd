package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/simulate"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

func handleSimulate(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("simulate", flag.ExitOnError)
	graphPath := cmd.String("graph", "data/graph.bin.zst", "Processed graph file")
	setupPath := cmd.String("setup", "", "Simulation setup JSON file")
	outputPath := cmd.String("output", "", "Output CSV file; stdout when empty")
	ignoreMissing := cmd.Bool("ignore-missing", false, "Skip simulated sites that lie on no route")
	workers := cmd.Int("workers", 0, "Parallel scenarios; GOMAXPROCS when zero")
	quiet := cmd.Bool("quiet", false, "Log steps instead of drawing progress bars")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse simulate flags")
	}

	if *setupPath == "" {
		return errors.New("--setup flag is required for simulate command")
	}

	setup, err := readSetup(*setupPath)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	pg, err := graph.ReadFile(*graphPath)
	if err != nil {
		return errors.Wrapf(err, "load graph %s", *graphPath)
	}

	opts := simulate.Options{IgnoreMissingSensors: *ignoreMissing, Workers: *workers}
	if cfg.Routing != nil {
		opts.DefaultSpeedKmh = cfg.Routing.DefaultSpeedKmh
		opts.NominalSpeedKmh = cfg.Routing.NominalSpeedKmh
	}

	outcomes, err := simulate.Run(ctx, pg, setup, opts, newObserver(*quiet, logger), logger)
	if err != nil {
		return errors.Wrap(err, "run simulation")
	}

	out, err := output(*outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := simulate.WriteCSV(out, outcomes); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Simulated %d outcomes over %d paths\n", len(outcomes), len(setup.Paths))

	return nil
}

func readSetup(path string) (simulate.Setup, error) {
	f, err := os.Open(path)
	if err != nil {
		return simulate.Setup{}, errors.WithStack(err)
	}
	defer f.Close()

	var setup simulate.Setup
	if err := json.NewDecoder(f).Decode(&setup); err != nil {
		return simulate.Setup{}, errors.Wrapf(err, "decode setup %s", path)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(setup); err != nil {
		return simulate.Setup{}, errors.Wrapf(err, "invalid setup %s", path)
	}

	return setup, nil
}
