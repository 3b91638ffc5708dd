package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"roadnet/internal/infra/roads"
	"roadnet/internal/infra/routing/graph"

	"github.com/pkg/errors"
)

func handleExtractGeoPackage(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("extract-gpkg", flag.ExitOnError)
	input := cmd.String("input", "", "GeoPackage file")
	filter := cmd.String("filter", "", "Extra SQL appended to the select, e.g. a WHERE clause")
	outputPath := cmd.String("output", "roads.json", "Road JSON output file")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse extract-gpkg flags")
	}

	if *input == "" {
		return errors.New("--input flag is required for extract-gpkg command")
	}
	if _, err := os.Stat(*input); os.IsNotExist(err) {
		return errors.Errorf("input file does not exist: %s", *input)
	}

	roadList, err := roads.ReadGeoPackage(ctx, *input, *filter)
	if err != nil {
		return errors.Wrapf(err, "extract %s", *input)
	}

	out, err := output(*outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := roads.WriteRoadJSON(out, roadList); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Extracted %d roads to %s\n", len(roadList), *outputPath)

	return nil
}

func handleParseRaw(args []string) error {
	cmd := flag.NewFlagSet("parse-raw", flag.ExitOnError)
	rawRoads := cmd.String("roads", "", "Raw road feed file")
	rawSensors := cmd.String("sensors", "", "Raw sensor feed file")
	roadsOut := cmd.String("roads-output", "roads.json", "Road JSON output file")
	sensorsOut := cmd.String("sensors-output", "sensors.json", "Sensor output file (.json or .csv)")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse parse-raw flags")
	}

	if *rawRoads == "" && *rawSensors == "" {
		return errors.New("--roads or --sensors is required for parse-raw command")
	}

	if *rawRoads != "" {
		roadList, err := roads.ReadFile(context.Background(), *rawRoads, roads.FormatRawJSON, roads.Options{})
		if err != nil {
			return errors.Wrapf(err, "parse %s", *rawRoads)
		}
		if err := writeFile(*roadsOut, func(f *os.File) error { return roads.WriteRoadJSON(f, roadList) }); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Parsed %d roads to %s\n", len(roadList), *roadsOut)
	}

	if *rawSensors != "" {
		sensors, err := roads.ReadSensorFile(*rawSensors, true)
		if err != nil {
			return errors.Wrapf(err, "parse %s", *rawSensors)
		}
		write := func(f *os.File) error { return roads.WriteSensorJSON(f, sensors) }
		if isCSV(*sensorsOut) {
			write = func(f *os.File) error { return roads.WriteSensorCSV(f, sensors) }
		}
		if err := writeFile(*sensorsOut, write); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Parsed %d sensors to %s\n", len(sensors), *sensorsOut)
	}

	return nil
}

func handleExport(args []string) error {
	cmd := flag.NewFlagSet("export", flag.ExitOnError)
	graphPath := cmd.String("graph", "data/graph.bin.zst", "Processed graph file")
	outputPath := cmd.String("output", "graph.geojson", "GeoJSON output file")
	nodes := cmd.Bool("nodes", true, "Export nodes as points")
	edges := cmd.Bool("edges", true, "Export edges as lines")
	connectors := cmd.Bool("connectors", false, "Export connector edges")
	format := cmd.String("format", "", "Re-encode the graph to this file instead (.json, .bin or .bin.zst)")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse export flags")
	}

	pg, err := graph.ReadFile(*graphPath)
	if err != nil {
		return errors.Wrapf(err, "load graph %s", *graphPath)
	}

	if *format != "" {
		return graph.WriteFile(*format, pg)
	}

	fc := graph.ToGeoJSON(pg, graph.ExportOptions{Nodes: *nodes, Edges: *edges, Connectors: *connectors})
	data, err := fc.MarshalJSON()
	if err != nil {
		return errors.WithStack(err)
	}

	out, err := output(*outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return errors.WithStack(err)
	}
	fmt.Fprintf(os.Stderr, "Exported %d features to %s\n", len(fc.Features), *outputPath)

	return nil
}

func handleInspect(args []string) error {
	cmd := flag.NewFlagSet("inspect", flag.ExitOnError)
	graphPath := cmd.String("graph", "data/graph.bin.zst", "Processed graph file")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse inspect flags")
	}

	pg, err := graph.ReadFile(*graphPath)
	if err != nil {
		return errors.Wrapf(err, "load graph %s", *graphPath)
	}

	return writeJSON(os.Stdout, struct {
		graph.Stats
		Sites int `json:"sites"`
	}{Stats: pg.Stats(), Sites: len(pg.Sensors.SiteIDs())})
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := write(f); err != nil {
		f.Close()

		return err
	}

	return errors.WithStack(f.Close())
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
