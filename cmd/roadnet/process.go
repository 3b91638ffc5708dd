package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/roads"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/topology"

	"github.com/pkg/errors"
)

type processFlags struct {
	roads      string
	format     string
	sensors    string
	rawSensors bool
	output     string
	bounds     string
	zoom       int
	layer      string
	gpkgFilter string
	report     string
	quiet      bool
}

func handleProcess(ctx context.Context, args []string) error {
	var f processFlags
	cmd := flag.NewFlagSet("process", flag.ExitOnError)
	cmd.StringVar(&f.roads, "roads", "", "Road input file (json, raw, geojson, osm, gpkg, mvt, pmtiles)")
	cmd.StringVar(&f.format, "format", "", "Road input format; guessed from the extension when empty")
	cmd.StringVar(&f.sensors, "sensors", "", "Sensor input file (json or csv)")
	cmd.BoolVar(&f.rawSensors, "raw-sensors", false, "Sensor file is in the raw feed format")
	cmd.StringVar(&f.output, "output", "data/graph.bin.zst", "Output graph file (.json, .bin or .bin.zst)")
	cmd.StringVar(&f.bounds, "bounds", "", "Area to read from tile archives: minLon,minLat,maxLon,maxLat")
	cmd.IntVar(&f.zoom, "zoom", roads.DefaultPMTilesZoom, "Zoom level tile archives are read at")
	cmd.StringVar(&f.layer, "layer", "", "Road layer name in vector tiles")
	cmd.StringVar(&f.gpkgFilter, "gpkg-filter", "", "Extra SQL appended to the GeoPackage select")
	cmd.StringVar(&f.report, "report", "", "Write the pipeline report as JSON to this file")
	cmd.BoolVar(&f.quiet, "quiet", false, "Log steps instead of drawing progress bars")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse process flags")
	}

	if f.roads == "" {
		return errors.New("--roads flag is required for process command")
	}

	return runProcess(ctx, f)
}

func runProcess(ctx context.Context, f processFlags) error {
	cfg := loadConfig()
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	roadList, err := readRoads(ctx, f)
	if err != nil {
		return err
	}

	var sensors []entity.SensorSample
	if f.sensors != "" {
		if sensors, err = roads.ReadSensorFile(f.sensors, f.rawSensors); err != nil {
			return errors.Wrapf(err, "read sensors %s", f.sensors)
		}
	}
	logger.Info("Loaded input", "roads", len(roadList), "sensors", len(sensors))

	processor, err := topology.NewProcessor(cfg.Processing.Options(), newObserver(f.quiet, logger), logger)
	if err != nil {
		return err
	}

	start := time.Now()
	pg, report, err := processor.Run(ctx, roadList, sensors)
	if err != nil {
		return errors.Wrap(err, "process road graph")
	}

	if err := graph.WriteFile(f.output, pg); err != nil {
		return errors.Wrapf(err, "write graph %s", f.output)
	}

	if f.report != "" {
		out, err := output(f.report)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := writeJSON(out, report); err != nil {
			return err
		}
	}

	fmt.Printf("Processed %d roads into %d nodes and %d edges in %v\n",
		report.RoadsIn, report.FinalNodes, report.FinalEdges, time.Since(start).Round(time.Millisecond))
	fmt.Printf("Graph written to: %s\n", f.output)

	return nil
}

func readRoads(ctx context.Context, f processFlags) ([]entity.RoadSegment, error) {
	format, err := roadFormat(f.roads, f.format)
	if err != nil {
		return nil, err
	}

	bounds, err := parseBounds(f.bounds)
	if err != nil {
		return nil, err
	}

	if format != roads.FormatPMTiles {
		if _, err := os.Stat(f.roads); err != nil {
			return nil, errors.Wrapf(err, "road input %s", f.roads)
		}
	}

	roadList, err := roads.ReadFile(ctx, f.roads, format, roads.Options{
		GeoPackageFilter: f.gpkgFilter,
		MVTLayer:         f.layer,
		Bounds:           bounds,
		PMTilesZoom:      f.zoom,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "read roads %s", f.roads)
	}

	return roadList, nil
}

func roadFormat(path, name string) (roads.Format, error) {
	if name != "" {
		return roads.ParseFormat(name)
	}

	return roads.FormatFromPath(path)
}
